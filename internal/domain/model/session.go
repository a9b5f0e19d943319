package model

import "time"

// SessionContext is the resolved per-identity state an authenticated page
// needs: the guild, the caller's role in it and the current entitlement. It is
// derived once per sign-in, cached, and invalidated on logout.
type SessionContext struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email"`
	GuildID      string     `json:"guildId"`
	GuildName    string     `json:"guildName,omitempty"`
	Role         Role       `json:"role"`
	VIPTier      string     `json:"vipTier"`
	VIPExpiresAt *time.Time `json:"vipExpiresAt,omitempty"`
}

// Pages an Admin may open. Líder is unrestricted, Jogador is confined to the
// lines page, Membro is rejected outright.
var adminPages = map[string]bool{
	"dashboard": true,
	"members":   true,
	"settings":  true,
	"lines":     true,
}

// PlayerPage is the single page a Jogador account may open.
const PlayerPage = "lines"

// PageAllowed reports whether the role may open the given page identifier.
func PageAllowed(role Role, page string) bool {
	switch role {
	case RoleLeader:
		return true
	case RoleAdmin:
		return adminPages[page]
	case RolePlayer:
		return page == PlayerPage
	default:
		return false
	}
}

// FallbackPage is where a caller landing on a disallowed page is sent.
func FallbackPage(role Role) string {
	if role == RolePlayer {
		return PlayerPage
	}
	return "dashboard"
}
