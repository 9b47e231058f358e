package sqf

import (
	"net/http"
)

// ContentType is served with every encoded response body.
const ContentType = "text/plain; charset=utf-8"

// WriteHTTP writes v in encoded form with the given status.
func WriteHTTP(w http.ResponseWriter, status int, v Value) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(Encode(v)))
}
