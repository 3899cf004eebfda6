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

// DeviceHandler proxies device operations to the inventory backend with the
// caller's session token and fans mutations out over the websocket hub.
type DeviceHandler struct {
	gw       *gateway.Client
	sessions session.Store
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewDeviceHandler(gw *gateway.Client, sessions session.Store, hub *websocket.Hub, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{gw: gw, sessions: sessions, hub: hub, logger: logger}
}

func (h *DeviceHandler) broadcast(action string, id int64) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.Message{Entity: "device", Action: action, ID: id})
	}
}

func (h *DeviceHandler) client(r *http.Request) *gateway.Client {
	return h.gw.WithToken(auth.Token(r.Context()))
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	params := gateway.DeviceListParams{
		Page:      parseIntQuery(r, "page"),
		Limit:     parseIntQuery(r, "limit"),
		Status:    r.URL.Query().Get("status"),
		Condition: r.URL.Query().Get("condition"),
		Category:  r.URL.Query().Get("category"),
		SchoolID:  parseInt64Query(r, "schoolId"),
		Search:    r.URL.Query().Get("search"),
	}

	list, err := h.client(r).ListDevices(r.Context(), params)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	device, err := h.client(r).GetDevice(r.Context(), id)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	device, err := h.client(r).CreateDevice(r.Context(), body)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("created", device.ID)
	writeJSON(w, http.StatusCreated, device)
}

func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	device, err := h.client(r).UpdateDevice(r.Context(), id, body)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("updated", id)
	writeJSON(w, http.StatusOK, device)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid device id")
		return
	}

	if err := h.client(r).DeleteDevice(r.Context(), id); err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	h.broadcast("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

const maxImportSize = 16 << 20 // 16 MiB

// BulkImport streams an uploaded spreadsheet through to the backend without
// parsing it; the backend owns the row validation.
func (h *DeviceHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "A file upload is required")
		return
	}
	defer file.Close()

	result, err := h.client(r).BulkImportDevices(r.Context(), header.Filename, file)
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}

	if result.Imported > 0 {
		h.broadcast("imported", 0)
	}
	writeJSON(w, http.StatusOK, result)
}
