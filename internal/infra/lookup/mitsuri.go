// File: internal/infra/lookup/mitsuri.go
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guildahub/internal/domain"
	"guildahub/internal/domain/ports/adapter"
)

var _ adapter.NicknameLookup = (*MitsuriLookup)(nil)

// MitsuriLookup resolves player nicknames through the Mitsuri player-info API.
// The API key stays server-side; clients only ever see the nickname.
type MitsuriLookup struct {
	endpoint string
	apiKey   string
	region   string
	client   *http.Client
}

func NewMitsuriLookup(endpoint, apiKey string) *MitsuriLookup {
	if endpoint == "" {
		endpoint = "https://api.mitsuri.fun/api/trpc/api.info"
	}
	return &MitsuriLookup{
		endpoint: endpoint,
		apiKey:   apiKey,
		region:   "BR",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MitsuriLookup) Nickname(ctx context.Context, playerID string) (string, error) {
	uid, err := strconv.ParseInt(playerID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("player id %q: %w", playerID, domain.ErrInvalidArgument)
	}

	body, _ := json.Marshal(map[string]any{
		"json": map[string]any{"key": m.apiKey, "uid": uid, "region": m.region},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "GuildaHub/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: lookup http %d", domain.ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	nick := extractNick(payload)
	if nick == "" {
		return "", domain.ErrNotFound
	}
	return nick, nil
}

// extractNick digs the nickname out of the response. The upstream wraps the
// account object differently per region/version, so both the envelope and the
// nickname field are tried in a fixed fallback order.
func extractNick(data map[string]any) string {
	payload := firstMap(
		dig(data, "result", "data", "json"),
		dig(data, "data", "json"),
		dig(data, "json"),
		data,
	)
	if payload == nil {
		return ""
	}

	acc := firstMap(
		dig(payload, "AccountInfo"),
		dig(payload, "captainBasicInfo"),
		dig(payload, "account"),
		payload,
	)

	for _, candidate := range []any{
		acc["AccountName"], acc["accountName"], acc["Name"], acc["nickname"], acc["nick"],
		payload["nickname"], payload["nick"],
	} {
		if s, ok := candidate.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func dig(m map[string]any, path ...string) map[string]any {
	cur := m
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func firstMap(candidates ...map[string]any) map[string]any {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
