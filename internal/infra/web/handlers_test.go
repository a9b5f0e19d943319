// File: internal/infra/web/handlers_test.go
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/usecase"
)

// --- Stub use cases and adapters ---

type stubPaymentUC struct {
	createFunc func(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error)
}

func (s *stubPaymentUC) CreatePix(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error) {
	return s.createFunc(ctx, ident, plan)
}

type stubStatusUC struct {
	reconcileFunc func(ctx context.Context, ident adapter.Identity, paymentID string) (*usecase.StatusResult, error)
}

func (s *stubStatusUC) Reconcile(ctx context.Context, ident adapter.Identity, paymentID string) (*usecase.StatusResult, error) {
	return s.reconcileFunc(ctx, ident, paymentID)
}

type stubWebhookUC struct {
	processed []string
	err       error
}

func (s *stubWebhookUC) Process(ctx context.Context, paymentID string) error {
	s.processed = append(s.processed, paymentID)
	return s.err
}

type stubSessionUC struct {
	resolveFunc func(ctx context.Context, ident adapter.Identity, page string) (*usecase.SessionResolution, error)
	loggedOut   []string
}

func (s *stubSessionUC) Resolve(ctx context.Context, ident adapter.Identity, page string) (*usecase.SessionResolution, error) {
	return s.resolveFunc(ctx, ident, page)
}

func (s *stubSessionUC) Logout(ctx context.Context, uid string) error {
	s.loggedOut = append(s.loggedOut, uid)
	return nil
}

type stubSignupUC struct {
	finalizeFunc func(ctx context.Context, ident adapter.Identity, username string) (string, error)
}

func (s *stubSignupUC) Finalize(ctx context.Context, ident adapter.Identity, username string) (string, error) {
	return s.finalizeFunc(ctx, ident, username)
}

type stubLookup struct {
	nick string
	err  error
}

func (s *stubLookup) Nickname(ctx context.Context, playerID string) (string, error) {
	return s.nick, s.err
}

// stubVerifier accepts the single token "good-token".
type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (adapter.Identity, error) {
	if token != "good-token" {
		return adapter.Identity{}, domain.ErrUnauthorized
	}
	return adapter.Identity{UID: "u1", Email: "u1@guild.gg"}, nil
}

type serverStubs struct {
	payment *stubPaymentUC
	status  *stubStatusUC
	webhook *stubWebhookUC
	session *stubSessionUC
	signup  *stubSignupUC
	lookup  *stubLookup
}

func newTestServer() (*Server, *serverStubs) {
	stubs := &serverStubs{
		payment: &stubPaymentUC{createFunc: func(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error) {
			return &model.PaymentRequest{
				PaymentID: "12345", ProviderStatus: "pending", Label: model.LabelPendente,
				Plan: model.PlanPro, AmountCents: 899, QRCode: "copy-paste", QRBase64: "img",
			}, nil
		}},
		status: &stubStatusUC{reconcileFunc: func(ctx context.Context, ident adapter.Identity, paymentID string) (*usecase.StatusResult, error) {
			return &usecase.StatusResult{PaymentID: paymentID, ProviderStatus: "approved", Label: model.LabelAprovado, UID: "u1"}, nil
		}},
		webhook: &stubWebhookUC{},
		session: &stubSessionUC{resolveFunc: func(ctx context.Context, ident adapter.Identity, page string) (*usecase.SessionResolution, error) {
			return &usecase.SessionResolution{
				Context: &model.SessionContext{UID: ident.UID, GuildID: "g1", Role: model.RoleLeader},
				Allowed: true,
			}, nil
		}},
		signup: &stubSignupUC{finalizeFunc: func(ctx context.Context, ident adapter.Identity, username string) (string, error) {
			return ident.UID, nil
		}},
		lookup: &stubLookup{nick: "ShadowKing"},
	}
	nop := zerolog.Nop()
	srv := NewServer(stubs.payment, stubs.status, stubs.webhook, stubs.session, stubs.signup,
		stubs.lookup, stubVerifier{}, &nop)
	return srv, stubs
}

func doRequest(t *testing.T, srv *Server, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
	return out
}

// --- Tests ---

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer()

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "", `{"plano":"pro"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "bad", `{"plano":"pro"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestCreatePixHandler(t *testing.T) {
	t.Run("returns the charge payload", func(t *testing.T) {
		srv, _ := newTestServer()
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "good-token", `{"plano":"pro"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["paymentId"] != "12345" || body["status"] != "pending" || body["label"] != "pendente" {
			t.Errorf("unexpected body: %v", body)
		}
		if body["amount"] != 8.99 {
			t.Errorf("amount = %v, want 8.99", body["amount"])
		}
	})

	t.Run("pending conflict maps to 409", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.payment.createFunc = func(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error) {
			return nil, &domain.PendingConflictError{PendingPlan: "pro", PaymentID: "12345"}
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "good-token", `{"plano":"business"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["pendingPlan"] != "pro" || body["paymentId"] != "12345" {
			t.Errorf("conflict body: %v", body)
		}
	})

	t.Run("rate limit maps to 429 with Retry-After", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.payment.createFunc = func(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error) {
			return nil, &domain.RateLimitedError{RetryAfter: 42 * time.Second, Reason: "too many requests"}
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "good-token", `{"plano":"pro"}`)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "42" {
			t.Errorf("Retry-After = %q, want 42", rec.Header().Get("Retry-After"))
		}
	})

	t.Run("provider rejection maps to 400 with payload", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.payment.createFunc = func(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error) {
			return nil, &domain.GatewayRejectedError{StatusCode: 400, Body: json.RawMessage(`{"message":"invalid payer"}`)}
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "good-token", `{"plano":"pro"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["error"] != "provider_rejected" || body["mpStatus"] != float64(400) {
			t.Errorf("rejection body: %v", body)
		}
	})

	t.Run("invalid plan maps to 400", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.payment.createFunc = func(ctx context.Context, ident adapter.Identity, plan string) (*model.PaymentRequest, error) {
			return nil, domain.ErrInvalidPlan
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/pix", "good-token", `{"plano":"gold"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestPaymentStatusHandler(t *testing.T) {
	srv, _ := newTestServer()
	rec := doRequest(t, srv, http.MethodGet, "/api/payments/status?paymentId=12345", "good-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "approved" || body["label"] != "aprovado" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["uid"] != "u1" {
		t.Errorf("uid = %v, want u1", body["uid"])
	}
}

func TestWebhookHandler(t *testing.T) {
	t.Run("processes the body payment id", func(t *testing.T) {
		srv, stubs := newTestServer()
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/webhook", "", `{"data":{"id":"777"}}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(stubs.webhook.processed) != 1 || stubs.webhook.processed[0] != "777" {
			t.Errorf("processed = %v, want [777]", stubs.webhook.processed)
		}
	})

	t.Run("query-string form works without a body", func(t *testing.T) {
		srv, stubs := newTestServer()
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/webhook?topic=payment&id=888", "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(stubs.webhook.processed) != 1 || stubs.webhook.processed[0] != "888" {
			t.Errorf("processed = %v, want [888]", stubs.webhook.processed)
		}
	})

	t.Run("data_id query form works without a body", func(t *testing.T) {
		srv, stubs := newTestServer()
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/webhook?type=payment&data_id=777", "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(stubs.webhook.processed) != 1 || stubs.webhook.processed[0] != "777" {
			t.Errorf("processed = %v, want [777]", stubs.webhook.processed)
		}
	})

	t.Run("acks 200 even when processing fails", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.webhook.err = errors.New("provider down")
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/webhook", "", `{"data":{"id":"999"}}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("acks 200 with no id at all", func(t *testing.T) {
		srv, stubs := newTestServer()
		rec := doRequest(t, srv, http.MethodPost, "/api/payments/webhook", "", `{}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(stubs.webhook.processed) != 0 {
			t.Errorf("nothing should be processed, got %v", stubs.webhook.processed)
		}
	})
}

func TestNicknameHandler(t *testing.T) {
	t.Run("valid id returns the nick", func(t *testing.T) {
		srv, _ := newTestServer()
		rec := doRequest(t, srv, http.MethodGet, "/api/players/nickname?id=123456789", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
		}
		if body := decodeBody(t, rec); body["nick"] != "ShadowKing" {
			t.Errorf("nick = %v", body["nick"])
		}
	})

	t.Run("id format is enforced before any upstream call", func(t *testing.T) {
		srv, _ := newTestServer()
		for _, id := range []string{"", "abc", "1234", "123456789012345678901", "12a45"} {
			rec := doRequest(t, srv, http.MethodGet, "/api/players/nickname?id="+id, "", "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("id %q: status = %d, want 400", id, rec.Code)
			}
		}
	})

	t.Run("unknown player maps to 404, upstream failure to 502", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.lookup.err = domain.ErrNotFound
		stubs.lookup.nick = ""
		if rec := doRequest(t, srv, http.MethodGet, "/api/players/nickname?id=55555", "", ""); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		stubs.lookup.err = domain.ErrUpstream
		if rec := doRequest(t, srv, http.MethodGet, "/api/players/nickname?id=55555", "", ""); rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})
}

func TestSessionHandlers(t *testing.T) {
	t.Run("resolve returns the context", func(t *testing.T) {
		srv, _ := newTestServer()
		rec := doRequest(t, srv, http.MethodPost, "/api/session", "good-token", `{"page":"dashboard"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["allowed"] != true {
			t.Errorf("allowed = %v", body["allowed"])
		}
		sctx, _ := body["context"].(map[string]any)
		if sctx["guildId"] != "g1" || sctx["role"] != "Líder" {
			t.Errorf("context = %v", sctx)
		}
	})

	t.Run("redirect is surfaced", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.session.resolveFunc = func(ctx context.Context, ident adapter.Identity, page string) (*usecase.SessionResolution, error) {
			return &usecase.SessionResolution{
				Context: &model.SessionContext{UID: ident.UID, Role: model.RolePlayer},
				Allowed: false, RedirectTo: "lines",
			}, nil
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/session", "good-token", `{"page":"dashboard"}`)
		body := decodeBody(t, rec)
		if body["allowed"] != false || body["redirectTo"] != "lines" {
			t.Errorf("unexpected body: %v", body)
		}
	})

	t.Run("no guild maps to 404", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.session.resolveFunc = func(ctx context.Context, ident adapter.Identity, page string) (*usecase.SessionResolution, error) {
			return nil, domain.ErrNoGuild
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/session", "good-token", `{"page":"dashboard"}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "no_guild" {
			t.Errorf("error = %v", body["error"])
		}
	})

	t.Run("member denial maps to 403", func(t *testing.T) {
		srv, stubs := newTestServer()
		stubs.session.resolveFunc = func(ctx context.Context, ident adapter.Identity, page string) (*usecase.SessionResolution, error) {
			return nil, domain.ErrAccessDenied
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/session", "good-token", `{"page":"dashboard"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("logout clears the cached context", func(t *testing.T) {
		srv, stubs := newTestServer()
		rec := doRequest(t, srv, http.MethodDelete, "/api/session", "good-token", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(stubs.session.loggedOut) != 1 || stubs.session.loggedOut[0] != "u1" {
			t.Errorf("loggedOut = %v", stubs.session.loggedOut)
		}
	})
}

func TestSignupHandler(t *testing.T) {
	srv, _ := newTestServer()
	rec := doRequest(t, srv, http.MethodPost, "/api/signup", "good-token", `{"username":"Os Valentes"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["guildId"] != "u1" {
		t.Errorf("guildId = %v", body["guildId"])
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
