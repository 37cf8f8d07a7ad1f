package http

import (
	"strings"

	"teambudget/internal/core"
	"teambudget/internal/store"
)

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(p *string) {
	if p != nil {
		*p = sanitizeInput(*p)
	}
}

func sanitizeTransaction(in *core.TransactionInput) {
	in.Description = sanitizeInput(in.Description)
	in.Category = sanitizeInput(in.Category)
	in.Date = strings.TrimSpace(in.Date)
}

func sanitizePersonPatch(p *store.PersonPatch) {
	sanitizePtr(p.FirstName)
	sanitizePtr(p.LastName)
	sanitizePtr(p.Jersey)
}

func sanitizeTeam(t *core.TeamSettings) {
	t.AgeGroup = sanitizeInput(t.AgeGroup)
	t.HeadCoach = sanitizeInput(t.HeadCoach)
	t.Manager = sanitizeInput(t.Manager)
	t.Season = sanitizeInput(t.Season)
}

func sanitizeLineItemPatch(p *store.LineItemPatch) {
	sanitizePtr(p.Name)
}

func sanitizeSponsorshipPatch(p *store.SponsorshipPatch) {
	sanitizePtr(p.Name)
}
