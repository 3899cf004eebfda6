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

type UserHandler struct {
	gw       *gateway.Client
	sessions session.Store
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewUserHandler(gw *gateway.Client, sessions session.Store, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{gw: gw, sessions: sessions, hub: hub, logger: logger}
}

func (h *UserHandler) broadcast(action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.Message{Entity: "user", Action: action, ID: id})
	}
}

func (h *UserHandler) client(r *http.Request) *gateway.Client {
	return h.gw.WithToken(auth.Token(r.Context()))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := gateway.UserListParams{
		Page:   parseIntQuery(r, "page"),
		Limit:  parseIntQuery(r, "limit"),
		Role:   r.URL.Query().Get("role"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}

	list, err := h.client(r).ListUsers(r.Context(), params)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.client(r).GetUser(r.Context(), id)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.client(r).CreateUser(r.Context(), body)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("created", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.client(r).UpdateUser(r.Context(), id, body)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("updated", id)
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.client(r).DeleteUser(r.Context(), id); err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
