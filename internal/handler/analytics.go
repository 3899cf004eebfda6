package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rtb-ict/devicehub/internal/auth"
	"github.com/rtb-ict/devicehub/internal/gateway"
	"github.com/rtb-ict/devicehub/internal/session"
)

type AnalyticsHandler struct {
	gw       *gateway.Client
	sessions session.Store
	logger   *slog.Logger
}

func NewAnalyticsHandler(gw *gateway.Client, sessions session.Store, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{gw: gw, sessions: sessions, logger: logger}
}

func (h *AnalyticsHandler) client(r *http.Request) *gateway.Client {
	return h.gw.WithToken(auth.Token(r.Context()))
}

func (h *AnalyticsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client(r).Analytics(r.Context())
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeMessage(w, http.StatusBadRequest, "Search query is required")
		return
	}

	result, err := h.client(r).Search(r.Context(), query, r.URL.Query().Get("type"), parseIntQuery(r, "limit"))
	if err != nil {
		writeProxyError(w, r, h.sessions, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
