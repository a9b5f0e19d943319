package model

import (
	"strings"

	"guildahub/internal/domain"
)

type PlanID string

const (
	PlanPlus     PlanID = "plus"
	PlanPro      PlanID = "pro"
	PlanBusiness PlanID = "business"
)

// Plan is a purchasable VIP tier with a fixed price and entitlement duration.
// Prices are stored in centavos (integer) to avoid float errors.
type Plan struct {
	ID           PlanID
	PriceCents   int64
	DurationDays int
}

// Amount is the price in BRL as the payment provider expects it.
func (p Plan) Amount() float64 { return float64(p.PriceCents) / 100 }

var planCatalog = map[PlanID]Plan{
	PlanPlus:     {ID: PlanPlus, PriceCents: 599, DurationDays: 30},
	PlanPro:      {ID: PlanPro, PriceCents: 899, DurationDays: 30},
	PlanBusiness: {ID: PlanBusiness, PriceCents: 6199, DurationDays: 365},
}

// PlanByID looks up a catalog plan.
func PlanByID(id PlanID) (Plan, bool) {
	p, ok := planCatalog[id]
	return p, ok
}

// EntitlementDays returns the entitlement duration for a plan identifier,
// defaulting to 30 days when the plan is unknown.
func EntitlementDays(id PlanID) int {
	if p, ok := planCatalog[id]; ok {
		return p.DurationDays
	}
	return 30
}

var planPrefixes = []string{"plano", "vip", "plan"}

var planSuffixes = []string{"mensal", "monthly", "anual", "yearly", "ano"}

var planAliases = map[string]PlanID{
	"+":     PlanPlus,
	"plus":  PlanPlus,
	"basic": PlanPlus,
	"free":  PlanPlus,

	"pro":     PlanPro,
	"premium": PlanPro,

	"business": PlanBusiness,
	"empresa":  PlanBusiness,
	"year":     PlanBusiness,
}

// NormalizePlan maps the many spellings the front end may send onto a catalog
// key. Known prefixes (plano/vip/plan) and billing-period suffixes are
// stripped before the alias table is consulted; anything that does not land on
// a priced plan is rejected.
func NormalizePlan(raw string) (PlanID, error) {
	p := strings.ToLower(strings.TrimSpace(raw))
	p = strings.ReplaceAll(p, " ", "")

	for _, pre := range planPrefixes {
		if strings.HasPrefix(p, pre) {
			p = strings.TrimPrefix(p, pre)
			p = strings.TrimLeft(p, "_-")
		}
	}
	for _, suf := range planSuffixes {
		if strings.HasSuffix(p, suf) {
			p = strings.TrimSuffix(p, suf)
			p = strings.TrimRight(p, "_-")
		}
	}

	if id, ok := planAliases[p]; ok {
		if _, priced := planCatalog[id]; priced {
			return id, nil
		}
	}
	return "", domain.ErrInvalidPlan
}
