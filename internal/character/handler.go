package character

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/fault"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

// Handler exposes character operations to game servers. Bodies are JSON,
// responses are encoded sqf values.
type Handler struct {
	svc    *Service
	faults fault.Reporter
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, faults fault.Reporter, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, faults: faults, logger: logger}
}

// ResolveRequest is sent when a player connects.
type ResolveRequest struct {
	Identity string `json:"identity"`
	ServerID int    `json:"server_id"`
	Name     string `json:"name"`
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identity == "" {
		h.logger.Debugw("invalid resolve payload", "err", err)
		sqf.WriteHTTP(w, http.StatusBadRequest, entity.ErrorWire())
		return
	}
	snap, err := h.svc.ResolveActive(r.Context(), req.Identity, req.ServerID, req.Name)
	if err != nil {
		h.fail(w, r, "resolve character", err)
		return
	}
	sqf.WriteHTTP(w, http.StatusOK, snap.Wire())
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}
	det, err := h.svc.FetchDetails(r.Context(), id)
	if err != nil {
		h.fail(w, r, "fetch details", err)
		return
	}
	sqf.WriteHTTP(w, http.StatusOK, det.Wire())
}

// UpdateRequest carries the field deltas of one save.
type UpdateRequest struct {
	ServerID int            `json:"server_id"`
	Fields   map[string]any `json:"fields"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid update payload", "err", err)
		sqf.WriteHTTP(w, http.StatusBadRequest, false)
		return
	}
	deltas := make(map[string]sqf.Value, len(req.Fields))
	for k, v := range req.Fields {
		deltas[k] = sqf.FromJSON(v)
	}
	h.result(w, r, "apply update", h.svc.ApplyUpdate(r.Context(), id, req.ServerID, deltas))
}

// SeedRequest carries the starting gear of a new character.
type SeedRequest struct {
	Inventory any `json:"inventory"`
	Backpack  any `json:"backpack"`
}

func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}
	var req SeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid seed payload", "err", err)
		sqf.WriteHTTP(w, http.StatusBadRequest, false)
		return
	}
	err := h.svc.SeedInventory(r.Context(), id, sqf.FromJSON(req.Inventory), sqf.FromJSON(req.Backpack))
	h.result(w, r, "seed inventory", err)
}

// KillRequest reports a death and the minutes the character survived.
type KillRequest struct {
	Duration int `json:"duration"`
}

func (h *Handler) Kill(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}
	var req KillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid kill payload", "err", err)
		sqf.WriteHTTP(w, http.StatusBadRequest, false)
		return
	}
	h.result(w, r, "mark dead", h.svc.MarkDead(r.Context(), id, req.Duration))
}

// LoginRequest is one audit event.
type LoginRequest struct {
	Identity    string `json:"identity"`
	CharacterID int64  `json:"character_id"`
	Action      int    `json:"action"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identity == "" {
		h.logger.Debugw("invalid login payload", "err", err)
		sqf.WriteHTTP(w, http.StatusBadRequest, false)
		return
	}
	h.result(w, r, "record login", h.svc.RecordLogin(r.Context(), req.Identity, req.CharacterID, req.Action))
}

func (h *Handler) characterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		sqf.WriteHTTP(w, http.StatusBadRequest, entity.ErrorWire())
		return 0, false
	}
	return id, true
}

// result answers a boolean lifecycle operation.
func (h *Handler) result(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		h.report(r, op, err)
		sqf.WriteHTTP(w, http.StatusInternalServerError, false)
		return
	}
	sqf.WriteHTTP(w, http.StatusOK, true)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ErrCharacterNotFound) {
		sqf.WriteHTTP(w, http.StatusNotFound, entity.ErrorWire())
		return
	}
	h.report(r, op, err)
	sqf.WriteHTTP(w, http.StatusInternalServerError, entity.ErrorWire())
}

// report logs a failed operation with the calling game server, if known,
// and forwards faults to the supervisor.
func (h *Handler) report(r *http.Request, op string, err error) {
	server, _ := auth.ServerFromContext(r.Context())
	if fault.IsFatal(err) {
		h.logger.Errorw(op+" hit a storage fault", "server", server, "err", err)
		h.faults.Report(err)
		return
	}
	h.logger.Warnw(op+" failed", "server", server, "err", err)
}
