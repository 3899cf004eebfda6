package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rtb-ict/devicehub/internal/auth"
	"github.com/rtb-ict/devicehub/internal/flow"
	"github.com/rtb-ict/devicehub/internal/gateway"
	"github.com/rtb-ict/devicehub/internal/middleware"
	"github.com/rtb-ict/devicehub/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps a failure to an HTTP response. Backend failures keep their
// status and message so the dashboard sees exactly what the backend said;
// network failures become 502; everything else is an opaque 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ge *gateway.Error
	switch {
	case errors.As(err, &ge):
		status := ge.Status
		if ge.Kind == gateway.KindNetwork {
			status = http.StatusBadGateway
		}
		writeMessage(w, status, ge.Message)
	case errors.Is(err, flow.ErrNoPendingLogin),
		errors.Is(err, flow.ErrNoResetFlow),
		errors.Is(err, flow.ErrResetNotVerified):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, flow.ErrInvalidServerResponse):
		writeMessage(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
	}
}

// writeProxyError handles a failed backend call made with a session token. A
// 401 from the backend means the token is dead, so the session is torn down
// before the error is surfaced; the next request redirects to login.
func writeProxyError(w http.ResponseWriter, r *http.Request, sessions session.Store, logger *slog.Logger, err error) {
	if gateway.IsAuth(err) {
		if ac, ok := auth.FromContext(r.Context()); ok {
			if derr := sessions.Delete(r.Context(), ac.Key); derr != nil {
				logger.Warn("tear down session", "error", derr)
			}
		}
		clearSessionCookie(w)
	}
	writeError(w, logger, err)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseIntQuery(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseInt64Query(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
