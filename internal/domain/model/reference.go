package model

import (
	"fmt"
	"strings"
)

// Reference is the structured string attached to a provider charge so that
// asynchronous notifications can recover the owning user, guild and plan.
// Wire format: pipe-delimited key:value pairs, e.g.
//
//	guilda:<guildID>|uid:<uid>|plano:<plan>
type Reference struct {
	GuildID string
	UID     string
	Plan    PlanID
}

func (r Reference) String() string {
	return fmt.Sprintf("guilda:%s|uid:%s|plano:%s", r.GuildID, r.UID, r.Plan)
}

// ParseReference decodes a structured reference. Unknown keys are ignored and
// values may themselves contain ':'; missing fields stay empty, the caller
// decides whether that is fatal.
func ParseReference(s string) Reference {
	var out Reference
	for _, part := range strings.Split(s, "|") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		val := strings.TrimSpace(v)
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "guilda":
			out.GuildID = val
		case "uid":
			out.UID = val
		case "plano":
			out.Plan = PlanID(val)
		}
	}
	return out
}
