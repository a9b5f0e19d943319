package adapter

import "context"

// NicknameLookup resolves a player id to an in-game nickname via the upstream
// lookup API.
type NicknameLookup interface {
	Nickname(ctx context.Context, playerID string) (string, error)
}
