// Package report shapes a computed result into the budget and ledger
// reports shown to the team manager and pushed to the spreadsheet.
package report

import (
	"sort"
	"strconv"

	"teambudget/internal/core"
	"teambudget/internal/engine"
)

type Line struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type OrgFees struct {
	PlayerGear      float64 `json:"playerGear"`
	CoachGear       float64 `json:"coachGear"`
	ExtraGames      float64 `json:"extraGames"`
	ExtraGamesCount float64 `json:"extraGamesCount"`
	Total           float64 `json:"total"`
}

type TeamExpenses struct {
	Tournaments []Line  `json:"tournaments"`
	Expenses    []Line  `json:"expenses"`
	OrgFees     float64 `json:"orgFees"`
	Total       float64 `json:"total"`
}

// FeeRow is one line of the per-person fee table.
type FeeRow struct {
	ID          core.ID          `json:"id"`
	Name        string           `json:"name"`
	Jersey      string           `json:"jersey"`
	Type        core.PersonType  `json:"type"`
	Package     core.PackageType `json:"package"`
	Base        float64          `json:"base"`
	Extras      float64          `json:"extras"`
	Share       float64          `json:"share"`
	Sponsorship float64          `json:"sponsorship"`
	Credit      float64          `json:"credit"`
	FinalOwed   float64          `json:"finalOwed"`
}

type Budget struct {
	Team           core.TeamSettings `json:"team"`
	OrgFees        OrgFees           `json:"orgFees"`
	TeamExpenses   TeamExpenses      `json:"teamExpenses"`
	Sponsorships   []Line            `json:"sponsorships"`
	SponsorTotal   float64           `json:"sponsorshipTotal"`
	Players        []FeeRow          `json:"players"`
	Coaches        []FeeRow          `json:"coaches"`
	PerPlayerShare float64           `json:"perPlayerShare"`
	Overflow       float64           `json:"overflow"`
}

type Cash struct {
	TransactionIncome  float64 `json:"transactionIncome"`
	TeamSponsorships   float64 `json:"teamSponsorships"`
	PlayerSponsorships float64 `json:"playerSponsorships"`
	PlayerCredits      float64 `json:"playerCredits"`
	TotalIncome        float64 `json:"totalIncome"`
	ActualExpenses     float64 `json:"actualExpenses"`
	BankBalance        float64 `json:"bankBalance"`
}

type Refund struct {
	BankBalance float64 `json:"bankBalance"`
	PlayerCount int     `json:"playerCount"`
	PerPlayer   float64 `json:"perPlayer"`
}

type PaymentRow struct {
	ID          core.ID `json:"id"`
	Name        string  `json:"name"`
	Jersey      string  `json:"jersey"`
	FinalOwed   float64 `json:"finalOwed"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
	Settled     bool    `json:"settled"`
}

type OrgFeeStatus struct {
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Remaining float64 `json:"remaining"`
}

// HistoryRow is a transaction with its linked player's name resolved.
type HistoryRow struct {
	core.Transaction
	PlayerName string `json:"playerName,omitempty"`
}

type Ledger struct {
	Cash             Cash         `json:"cash"`
	Refund           Refund       `json:"refund"`
	OrgFees          OrgFeeStatus `json:"orgFees"`
	Payments         []PaymentRow `json:"payments"`
	TotalCollections float64      `json:"totalCollections"`
	TotalPaid        float64      `json:"totalPaid"`
	TotalOutstanding float64      `json:"totalOutstanding"`
	History          []HistoryRow `json:"history"`
}

// BuildBudget assembles the budget report. People keep roster order.
func BuildBudget(s core.RosterState, r engine.Result) Budget {
	b := Budget{
		Team: s.TeamSettings,
		OrgFees: OrgFees{
			PlayerGear:      r.Budget.PlayerOrgFees,
			CoachGear:       r.Budget.CoachExpenses,
			ExtraGames:      r.Budget.ExtraGamesCost,
			ExtraGamesCount: core.NonNegative(s.ExtraGames.Float()),
			Total:           r.Budget.TotalOrgFees,
		},
		TeamExpenses: TeamExpenses{
			Tournaments: lines(s.Tournaments, "Tournament"),
			Expenses:    lines(s.Expenses, "Expense"),
			OrgFees:     r.Budget.TotalOrgFees,
			Total:       r.Budget.TournamentTotal + r.Budget.OtherExpensesTotal + r.Budget.TotalOrgFees,
		},
		Sponsorships:   make([]Line, 0, len(s.TeamSponsorships)),
		SponsorTotal:   r.Budget.DirectTeamSponsorship,
		Players:        []FeeRow{},
		Coaches:        []FeeRow{},
		PerPlayerShare: r.PerPlayerShare,
		Overflow:       r.TotalPlayerOverflow,
	}
	for _, sp := range s.TeamSponsorships {
		b.Sponsorships = append(b.Sponsorships, Line{Label: labelOr(sp.Name, "Sponsor"), Amount: sp.Amount.Float()})
	}
	for _, p := range s.Roster {
		pr := r.Person(p.ID)
		row := FeeRow{
			ID:          p.ID,
			Name:        displayName(p),
			Jersey:      p.Jersey,
			Type:        p.Type,
			Package:     p.PackageType,
			Base:        pr.Base,
			Extras:      pr.Extras,
			Share:       pr.Share,
			Sponsorship: pr.Sponsorship,
			Credit:      pr.Credit,
			FinalOwed:   pr.FinalOwed,
		}
		if p.IsPlayer() {
			b.Players = append(b.Players, row)
		} else {
			b.Coaches = append(b.Coaches, row)
		}
	}
	return b
}

// BuildLedger assembles the cash report. History is newest first.
func BuildLedger(s core.RosterState, r engine.Result) Ledger {
	a := r.Actuals
	l := Ledger{
		Cash: Cash{
			TransactionIncome:  a.TransactionIncome,
			TeamSponsorships:   r.Budget.DirectTeamSponsorship,
			PlayerSponsorships: a.TotalPlayerSponsorship,
			PlayerCredits:      a.TotalPlayerCredits,
			TotalIncome:        a.TotalEffectiveIncome,
			ActualExpenses:     a.ActualExpense,
			BankBalance:        a.BankBalance,
		},
		Refund: RefundFor(a.BankBalance, r.PlayerCount),
		OrgFees: OrgFeeStatus{
			Total:     r.Budget.TotalOrgFees,
			Paid:      a.OrgFeesPaid,
			Remaining: a.OrgFeesRemaining,
		},
		Payments:         []PaymentRow{},
		TotalCollections: r.TotalCollections,
		TotalPaid:        r.TotalPaid,
		TotalOutstanding: r.TotalOutstanding,
		History:          History(s),
	}
	for _, p := range s.Roster {
		if !p.IsPlayer() {
			continue
		}
		pr := r.Person(p.ID)
		l.Payments = append(l.Payments, PaymentRow{
			ID:          p.ID,
			Name:        displayName(p),
			Jersey:      p.Jersey,
			FinalOwed:   pr.FinalOwed,
			Paid:        pr.Paid,
			Outstanding: pr.Outstanding,
			Settled:     pr.Outstanding <= SettledTolerance,
		})
	}
	return l
}

// RefundFor splits the bank balance evenly over the players. A negative
// balance yields a negative refund, i.e. money still to be raised.
func RefundFor(balance float64, players int) Refund {
	rf := Refund{BankBalance: balance, PlayerCount: players}
	if players > 0 {
		rf.PerPlayer = balance / float64(players)
	}
	return rf
}

// History lists every transaction by date descending. Undated entries sort
// last; equal dates fall back to the newest id first.
func History(s core.RosterState) []HistoryRow {
	rows := make([]HistoryRow, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		row := HistoryRow{Transaction: t}
		if p, ok := s.PersonByID(t.PlayerID); ok {
			row.PlayerName = displayName(p)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, okI := rows[i].Time()
		tj, okJ := rows[j].Time()
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.After(tj)
		case okI != okJ:
			return okI
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

func lines(items []core.LineItem, fallback string) []Line {
	out := make([]Line, 0, len(items))
	for i, it := range items {
		out = append(out, Line{Label: labelOr(it.Name, fallback+" "+strconv.Itoa(i+1)), Amount: it.Cost.Float()})
	}
	return out
}

func labelOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func displayName(p core.Person) string {
	if n := p.FullName(); n != "" {
		return n
	}
	if p.IsPlayer() {
		return "Unnamed player"
	}
	return "Unnamed coach"
}
