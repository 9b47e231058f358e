package object

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Resolve answers ["PASS", "<id>"] or ["ERROR"].
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(r.PathValue("uid"), 10, 64)
	if err != nil {
		sqf.WriteHTTP(w, http.StatusBadRequest, entity.ErrorWire())
		return
	}
	id, err := h.svc.Resolve(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			sqf.WriteHTTP(w, http.StatusNotFound, entity.ErrorWire())
			return
		}
		server, _ := auth.ServerFromContext(r.Context())
		h.logger.Warnw("resolve object failed", "object_uid", uid, "server", server, "err", err)
		sqf.WriteHTTP(w, http.StatusInternalServerError, entity.ErrorWire())
		return
	}
	sqf.WriteHTTP(w, http.StatusOK, sqf.Array{entity.StatusPass, strconv.FormatInt(id, 10)})
}
