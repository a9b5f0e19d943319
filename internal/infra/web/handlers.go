// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"

	"guildahub/internal/domain/model"
	mp "guildahub/internal/infra/payment"
)

var playerIDPattern = regexp.MustCompile(`^[0-9]{5,20}$`)

func (s *Server) handleCreatePix(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Plano string `json:"plano"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid body")
		return
	}

	rec, err := s.paymentUC.CreatePix(r.Context(), ident, body.Plano)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse(rec))
}

func paymentResponse(rec *model.PaymentRequest) map[string]any {
	return map[string]any{
		"ok":        true,
		"paymentId": rec.PaymentID,
		"status":    rec.ProviderStatus,
		"label":     string(rec.Label),
		"qrCode":    rec.QRCode,
		"qrBase64":  rec.QRBase64,
		"amount":    float64(rec.AmountCents) / 100,
		"plano":     string(rec.Plan),
	}
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := s.statusUC.Reconcile(r.Context(), ident, r.URL.Query().Get("paymentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"paymentId": res.PaymentID,
		"status":    res.ProviderStatus,
		"label":     string(res.Label),
		"uid":       res.UID,
	})
}

// handleWebhook always acks with 200 so the provider stops retrying;
// processing failures are logged and picked up by later deliveries or the
// status endpoint.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	paymentID := mp.ExtractNotificationID(body, r.URL.Query())
	if paymentID == "" {
		s.log.Warn().Str("query", r.URL.RawQuery).Msg("webhook without payment id")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	if err := s.webhookUC.Process(r.Context(), paymentID); err != nil {
		s.log.Error().Err(err).Str("payment_id", paymentID).Msg("webhook processing failed")
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleNickname(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if !playerIDPattern.MatchString(id) {
		writeJSONError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	nick, err := s.lookup.Nickname(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nick": nick})
}

func (s *Server) handleSessionResolve(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Page string `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := s.sessionUC.Resolve(r.Context(), ident, body.Page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"allowed":    res.Allowed,
		"redirectTo": res.RedirectTo,
		"context":    res.Context,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.sessionUC.Logout(r.Context(), ident.UID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid body")
		return
	}

	guildID, err := s.signupUC.Finalize(r.Context(), ident, body.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "guildId": guildID})
}
