package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rtb-ict/devicehub/internal/auth"
	"github.com/rtb-ict/devicehub/internal/gateway"
	"github.com/rtb-ict/devicehub/internal/session"
	"github.com/rtb-ict/devicehub/internal/websocket"
)

type SchoolHandler struct {
	gw       *gateway.Client
	sessions session.Store
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewSchoolHandler(gw *gateway.Client, sessions session.Store, hub *websocket.Hub, logger *slog.Logger) *SchoolHandler {
	return &SchoolHandler{gw: gw, sessions: sessions, hub: hub, logger: logger}
}

func (h *SchoolHandler) broadcast(action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.Message{Entity: "school", Action: action, ID: id})
	}
}

func (h *SchoolHandler) client(r *http.Request) *gateway.Client {
	return h.gw.WithToken(auth.Token(r.Context()))
}

func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	params := gateway.SchoolListParams{
		Page:     parseIntQuery(r, "page"),
		Limit:    parseIntQuery(r, "limit"),
		Type:     r.URL.Query().Get("type"),
		Status:   r.URL.Query().Get("status"),
		District: r.URL.Query().Get("district"),
		Search:   r.URL.Query().Get("search"),
	}

	list, err := h.client(r).ListSchools(r.Context(), params)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid school id")
		return
	}

	school, err := h.client(r).GetSchool(r.Context(), id)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, school)
}

func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	school, err := h.client(r).CreateSchool(r.Context(), body)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("created", school.ID)
	writeJSON(w, http.StatusCreated, school)
}

func (h *SchoolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid school id")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	school, err := h.client(r).UpdateSchool(r.Context(), id, body)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("updated", id)
	writeJSON(w, http.StatusOK, school)
}

func (h *SchoolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid school id")
		return
	}

	if err := h.client(r).DeleteSchool(r.Context(), id); err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
