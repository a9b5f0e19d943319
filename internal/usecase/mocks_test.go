// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- payment request repo ----

type memRequestRepo struct {
	mu      sync.RWMutex
	byUID   map[string]*model.PaymentRequest
	Upserts int
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{byUID: make(map[string]*model.PaymentRequest)}
}

func (m *memRequestRepo) FindByUID(ctx context.Context, uid string) (*model.PaymentRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byUID[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRequestRepo) FindByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.byUID {
		if r.PaymentID == paymentID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Upsert mirrors the store's merge semantics: empty incoming fields keep the
// stored value.
func (m *memRequestRepo) Upsert(ctx context.Context, req *model.PaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++
	cur, ok := m.byUID[req.UID]
	if !ok {
		cp := *req
		m.byUID[req.UID] = &cp
		return nil
	}
	if req.PaymentID != "" {
		cur.PaymentID = req.PaymentID
	}
	if req.ProviderStatus != "" {
		cur.ProviderStatus = req.ProviderStatus
	}
	if req.Label != "" {
		cur.Label = req.Label
	}
	if req.Plan != "" {
		cur.Plan = req.Plan
	}
	if req.Email != "" {
		cur.Email = req.Email
	}
	if req.GuildID != "" {
		cur.GuildID = req.GuildID
	}
	if req.AmountCents != 0 {
		cur.AmountCents = req.AmountCents
	}
	if req.QRCode != "" {
		cur.QRCode = req.QRCode
	}
	if req.QRBase64 != "" {
		cur.QRBase64 = req.QRBase64
	}
	if req.IdempotencyKey != "" {
		cur.IdempotencyKey = req.IdempotencyKey
	}
	cur.UpdatedAt = req.UpdatedAt
	return nil
}

func (m *memRequestRepo) UpdateStatus(ctx context.Context, uid, providerStatus string, label model.StatusLabel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byUID[uid]
	if !ok {
		cp := &model.PaymentRequest{UID: uid, ProviderStatus: providerStatus, Label: label}
		m.byUID[uid] = cp
		return nil
	}
	cur.ProviderStatus = providerStatus
	cur.Label = label
	return nil
}

// ---- guild config repo ----

type memGuildRepo struct {
	mu     sync.RWMutex
	byID   map[string]*model.GuildConfig
	setErr error
}

func newMemGuildRepo() *memGuildRepo {
	return &memGuildRepo{byID: make(map[string]*model.GuildConfig)}
}

func (m *memGuildRepo) FindByID(ctx context.Context, guildID string) (*model.GuildConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.byID[guildID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memGuildRepo) FindByMemberEmail(ctx context.Context, email string) (*model.GuildConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.byID {
		if model.NormalizeEmail(g.OwnerEmail) == email {
			cp := *g
			return &cp, nil
		}
		for _, e := range append(append([]string{}, g.Leaders...), g.Admins...) {
			if model.NormalizeEmail(e) == email {
				cp := *g
				return &cp, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memGuildRepo) Save(ctx context.Context, cfg *model.GuildConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.byID[cfg.ID] = &cp
	return nil
}

func (m *memGuildRepo) SetEntitlement(ctx context.Context, guildID, tier string, expiresAt *time.Time) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.byID[guildID]
	if !ok {
		g = &model.GuildConfig{ID: guildID}
		m.byID[guildID] = g
	}
	g.VIPTier = tier
	g.VIPExpiresAt = expiresAt
	return nil
}

func (m *memGuildRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*model.GuildConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.GuildConfig
	for _, g := range m.byID {
		if g.VIPTier != "" && g.VIPTier != model.TierFree && g.EntitlementExpired(now) {
			cp := *g
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ---- guild profile repo ----

type memGuildProfileRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.GuildProfile
}

func newMemGuildProfileRepo() *memGuildProfileRepo {
	return &memGuildProfileRepo{byID: make(map[string]*model.GuildProfile)}
}

func (m *memGuildProfileRepo) FindByID(ctx context.Context, guildID string) (*model.GuildProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[guildID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memGuildProfileRepo) Save(ctx context.Context, p *model.GuildProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memGuildProfileRepo) SetEntitlement(ctx context.Context, guildID, tier string, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[guildID]
	if !ok {
		p = &model.GuildProfile{ID: guildID}
		m.byID[guildID] = p
	}
	p.VIPTier = tier
	p.VIPExpiresAt = expiresAt
	return nil
}

// ---- user profile repo ----

type memUserRepo struct {
	mu    sync.RWMutex
	byUID map[string]*model.UserProfile
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byUID: make(map[string]*model.UserProfile)}
}

func (m *memUserRepo) FindByUID(ctx context.Context, uid string) (*model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byUID[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memUserRepo) Save(ctx context.Context, p *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byUID[p.UID] = &cp
	return nil
}

func (m *memUserRepo) SetGuild(ctx context.Context, uid, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byUID[uid]
	if !ok {
		p = &model.UserProfile{UID: uid}
		m.byUID[uid] = p
	}
	p.GuildID = guildID
	return nil
}

func (m *memUserRepo) SetEntitlement(ctx context.Context, uid, tier string, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byUID[uid]
	if !ok {
		p = &model.UserProfile{UID: uid}
		m.byUID[uid] = p
	}
	p.VIPTier = tier
	p.VIPExpiresAt = expiresAt
	return nil
}

// ---- operator repo ----

type memOperatorRepo struct{ emails map[string]bool }

func newMemOperatorRepo(emails ...string) *memOperatorRepo {
	m := &memOperatorRepo{emails: make(map[string]bool)}
	for _, e := range emails {
		m.emails[model.NormalizeEmail(e)] = true
	}
	return m
}

func (m *memOperatorRepo) IsOperator(ctx context.Context, email string) (bool, error) {
	return m.emails[model.NormalizeEmail(email)], nil
}

// ---- rate limiter / cooldown ----

type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingLimiter() *countingLimiter {
	return &countingLimiter{counts: make(map[string]int)}
}

func (l *countingLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	if l.counts[key] > limit {
		return false, window, nil
	}
	return true, 0, nil
}

type fakeCooldown struct {
	mu        sync.Mutex
	remaining map[string]time.Duration
	armed     map[string]time.Duration
}

func newFakeCooldown() *fakeCooldown {
	return &fakeCooldown{remaining: make(map[string]time.Duration), armed: make(map[string]time.Duration)}
}

func (c *fakeCooldown) Remaining(ctx context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining[key], nil
}

func (c *fakeCooldown) Arm(ctx context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed[key] = ttl
	c.remaining[key] = ttl
	return nil
}

// ---- pix gateway ----

type fakeGateway struct {
	CreatePixFunc  func(ctx context.Context, req adapter.CreatePixRequest) (*adapter.PixCharge, error)
	GetPaymentFunc func(ctx context.Context, paymentID string) (*adapter.ProviderPayment, error)
	CreateCalls    int
}

func (g *fakeGateway) CreatePix(ctx context.Context, req adapter.CreatePixRequest) (*adapter.PixCharge, error) {
	g.CreateCalls++
	if g.CreatePixFunc != nil {
		return g.CreatePixFunc(ctx, req)
	}
	return &adapter.PixCharge{PaymentID: "12345", Status: "pending", QRCode: "qr", QRBase64: "qr64"}, nil
}

func (g *fakeGateway) GetPayment(ctx context.Context, paymentID string) (*adapter.ProviderPayment, error) {
	if g.GetPaymentFunc != nil {
		return g.GetPaymentFunc(ctx, paymentID)
	}
	return &adapter.ProviderPayment{ID: paymentID, Status: "pending"}, nil
}

func (g *fakeGateway) Name() string { return "fake" }

// ---- session cache ----

type memSessionCache struct {
	mu    sync.Mutex
	byUID map[string]*model.SessionContext
	Sets  int
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{byUID: make(map[string]*model.SessionContext)}
}

func (c *memSessionCache) Get(ctx context.Context, uid string) (*model.SessionContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.byUID[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (c *memSessionCache) Set(ctx context.Context, uid string, sctx *model.SessionContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *sctx
	c.byUID[uid] = &cp
	c.Sets++
	return nil
}

func (c *memSessionCache) Clear(ctx context.Context, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byUID, uid)
	return nil
}
