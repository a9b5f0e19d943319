// File: internal/infra/web/respond.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"guildahub/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// writeError maps domain errors onto the HTTP surface. Typed errors carry
// extra fields (retry hints, the conflicting charge, the provider payload).
func writeError(w http.ResponseWriter, err error) {
	var rl *domain.RateLimitedError
	if errors.As(err, &rl) {
		secs := int(rl.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"ok": false, "error": rl.Reason, "retryAfterSeconds": secs,
		})
		return
	}

	var conflict *domain.PendingConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"ok": false, "error": "payment_pending",
			"pendingPlan": conflict.PendingPlan, "paymentId": conflict.PaymentID,
		})
		return
	}

	var rejected *domain.GatewayRejectedError
	if errors.As(err, &rejected) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok": false, "error": "provider_rejected",
			"mpStatus": rejected.StatusCode, "mpResponse": rejected.Body,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidArgument):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrAccessDenied):
		writeJSONError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNoGuild):
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "no_guild"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUpstream):
		writeJSONError(w, http.StatusBadGateway, "upstream failure")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
