package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleLeader Role = "Líder"
	RoleAdmin  Role = "Admin"
	RolePlayer Role = "Jogador"
	RoleMember Role = "Membro"
)

// TierFree is the entitlement tier of a guild without an active subscription.
const TierFree = "free"

// NormalizeEmail canonicalizes an address for membership comparisons. Emails
// are normalized at write time so lookups never need fuzzy matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GuildConfig holds a guild's membership lists and current entitlement.
type GuildConfig struct {
	ID           string
	OwnerUID     string
	OwnerEmail   string
	Leaders      []string
	Admins       []string
	PlayerEmail  string // designated tournament player, at most one
	MemberTag    string
	VIPTier      string
	VIPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleFor derives the caller's role from the membership lists. First match
// wins: leaders, then admins, then the designated player. An owner match (uid
// or email) promotes an otherwise plain member to Líder.
func (g *GuildConfig) RoleFor(uid, email string) Role {
	e := NormalizeEmail(email)
	for _, l := range g.Leaders {
		if NormalizeEmail(l) == e {
			return RoleLeader
		}
	}
	for _, a := range g.Admins {
		if NormalizeEmail(a) == e {
			return RoleAdmin
		}
	}
	if g.PlayerEmail != "" && NormalizeEmail(g.PlayerEmail) == e {
		return RolePlayer
	}
	if (uid != "" && uid == g.OwnerUID) || (e != "" && e == NormalizeEmail(g.OwnerEmail)) {
		return RoleLeader
	}
	return RoleMember
}

// EntitlementExpired reports whether the guild's VIP window has passed.
// An expiry exactly equal to now is still valid; one millisecond past is not.
func (g *GuildConfig) EntitlementExpired(now time.Time) bool {
	if g.VIPExpiresAt == nil {
		return g.VIPTier != "" && g.VIPTier != TierFree
	}
	return now.After(*g.VIPExpiresAt)
}

// GuildProfile is the public-facing guild record (name, ownership). The VIP
// fields mirror GuildConfig for pages that read the legacy document.
type GuildProfile struct {
	ID           string
	Name         string
	OwnerUID     string
	OwnerEmail   string
	VIPTier      string
	VIPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile links an identity to its guild.
type UserProfile struct {
	UID          string
	Email        string
	Username     string
	GuildID      string
	VIPTier      string
	VIPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
