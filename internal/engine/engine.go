// Package engine computes the team's financial position from a roster state.
//
// Compute is a pure function: it performs no I/O, keeps no state between
// calls and never fails. Malformed numbers were already coerced to zero by the
// core decoders, so every input is valid here.
package engine

import (
	"sort"

	"teambudget/internal/core"
)

// SolverPasses is the fixed number of overflow redistribution passes.
// It is not a convergence test: results must match the three-pass behavior.
const SolverPasses = 3

// PersonResult is the per-person breakdown.
type PersonResult struct {
	Base           float64 `json:"base"`
	Extras         float64 `json:"extras"`
	Share          float64 `json:"share"`
	Sponsorship    float64 `json:"sponsorship"`
	Credit         float64 `json:"credit"`
	Overflow       float64 `json:"overflow"`
	FinalOwed      float64 `json:"finalOwed"`
	GrossLiability float64 `json:"grossLiability"`
	Paid           float64 `json:"paid"`
	Outstanding    float64 `json:"outstanding"`
}

// Budget holds the budget side aggregates.
type Budget struct {
	TournamentTotal       float64 `json:"tournamentTotal"`
	OtherExpensesTotal    float64 `json:"otherExpensesTotal"`
	CoachExpenses         float64 `json:"coachExpenses"`
	PlayerOrgFees         float64 `json:"playerOrgFees"`
	ExtraGamesCost        float64 `json:"extraGamesCost"`
	SharedExpensePool     float64 `json:"sharedExpensePool"`
	TotalBudgetedExpenses float64 `json:"totalBudgetedExpenses"`
	TotalOrgFees          float64 `json:"totalOrgFees"`
	DirectTeamSponsorship float64 `json:"directTeamSponsorship"`
}

// Actuals holds the cash side aggregates derived from the ledger.
type Actuals struct {
	TransactionIncome      float64 `json:"transactionIncome"`
	ActualExpense          float64 `json:"actualExpense"`
	TotalPlayerSponsorship float64 `json:"totalPlayerSponsorship"`
	TotalPlayerCredits     float64 `json:"totalPlayerCredits"`
	TotalEffectiveIncome   float64 `json:"totalEffectiveIncome"`
	BankBalance            float64 `json:"bankBalance"`
	OrgFeesPaid            float64 `json:"orgFeesPaid"`
	OrgFeesRemaining       float64 `json:"orgFeesRemaining"`
}

// Result is the full financial picture of one state.
type Result struct {
	PlayerCount         int                      `json:"playerCount"`
	PerPlayerShare      float64                  `json:"perPlayerShare"`
	TotalPlayerOverflow float64                  `json:"totalPlayerOverflow"`
	TotalCollections    float64                  `json:"totalCollections"`
	TotalPaid           float64                  `json:"totalPaid"`
	TotalOutstanding    float64                  `json:"totalOutstanding"`
	People              map[core.ID]PersonResult `json:"people"`
	Budget              Budget                   `json:"budget"`
	Actuals             Actuals                  `json:"actuals"`
}

// Person returns the breakdown for id, zero-valued if id is unknown.
func (r Result) Person(id core.ID) PersonResult {
	return r.People[id]
}

// Compute derives the financial result of s.
func Compute(s core.RosterState) Result {
	roster := canonicalRoster(s.Roster)
	fees := s.FeeStructure

	budget := aggregate(s, roster)
	playerCount := s.PlayerCount()

	people, share, overflow := solve(roster, fees, budget, playerCount)

	paid := paidByPerson(s.Transactions)
	res := Result{
		PlayerCount:         playerCount,
		PerPlayerShare:      share,
		TotalPlayerOverflow: overflow,
		People:              make(map[core.ID]PersonResult, len(people)),
		Budget:              budget,
	}
	for _, p := range roster {
		pr := people[p.ID]
		pr.Paid = paid[p.ID]
		pr.Outstanding = core.NonNegative(pr.FinalOwed - pr.Paid)
		res.People[p.ID] = pr
	}
	for _, p := range roster {
		pr := res.People[p.ID]
		res.TotalCollections += pr.FinalOwed
		res.TotalPaid += pr.Paid
		res.TotalOutstanding += pr.Outstanding
	}

	res.Actuals = actuals(s, roster, budget)
	return res
}

// canonicalRoster orders people by id so sums do not depend on list order.
func canonicalRoster(in []core.Person) []core.Person {
	out := append(make([]core.Person, 0, len(in)), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func aggregate(s core.RosterState, roster []core.Person) Budget {
	fees := s.FeeStructure
	var b Budget

	b.TournamentTotal = sumLineItems(s.Tournaments)
	b.OtherExpensesTotal = sumLineItems(s.Expenses)

	for _, p := range roster {
		cost := fees.PackageCost(p.Type, p.PackageType) + fees.ExtrasCost(p.Extras)
		switch p.Type {
		case core.Coach:
			b.CoachExpenses += cost
		case core.Player:
			b.PlayerOrgFees += cost
		}
	}

	b.ExtraGamesCost = core.NonNegative(s.ExtraGames.Float()) * fees.GamesAfter13.Float()
	b.SharedExpensePool = b.TournamentTotal + b.OtherExpensesTotal + b.CoachExpenses + b.ExtraGamesCost
	b.TotalBudgetedExpenses = b.SharedExpensePool + b.PlayerOrgFees
	b.TotalOrgFees = b.PlayerOrgFees + b.CoachExpenses + b.ExtraGamesCost

	sponsorships := append([]core.Sponsorship(nil), s.TeamSponsorships...)
	sort.SliceStable(sponsorships, func(i, j int) bool { return sponsorships[i].ID < sponsorships[j].ID })
	for _, sp := range sponsorships {
		b.DirectTeamSponsorship += sp.Amount.Float()
	}
	return b
}

func sumLineItems(items []core.LineItem) float64 {
	sorted := append([]core.LineItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	var total float64
	for _, it := range sorted {
		total += it.Cost.Float()
	}
	return total
}

// solve runs the overflow redistribution passes and returns the breakdown of
// the final pass, the final per-player share and the final pass overflow.
func solve(roster []core.Person, fees core.FeeSchedule, b Budget, playerCount int) (map[core.ID]PersonResult, float64, float64) {
	var (
		overflow float64
		share    float64
		people   map[core.ID]PersonResult
	)

	for pass := 0; pass < SolverPasses; pass++ {
		netPool := b.SharedExpensePool - b.DirectTeamSponsorship - overflow
		share = 0
		if playerCount > 0 {
			share = core.NonNegative(netPool / float64(playerCount))
		}

		overflow = 0
		people = make(map[core.ID]PersonResult, len(roster))
		for _, p := range roster {
			pr := liability(p, fees, share)
			overflow += pr.Overflow
			people[p.ID] = pr
		}
	}
	return people, share, overflow
}

func liability(p core.Person, fees core.FeeSchedule, share float64) PersonResult {
	pr := PersonResult{
		Base:        fees.PackageCost(p.Type, p.PackageType),
		Extras:      fees.ExtrasCost(p.Extras),
		Sponsorship: p.Sponsorship.Float(),
		Credit:      p.Credit.Float(),
	}
	if !p.IsPlayer() {
		return pr
	}

	pr.Share = share
	pr.GrossLiability = pr.Base + pr.Extras + pr.Share

	reductions := pr.Sponsorship + pr.Credit
	if reductions >= pr.GrossLiability {
		pr.Overflow = reductions - pr.GrossLiability
	} else {
		pr.FinalOwed = pr.GrossLiability - reductions
	}
	return pr
}

// paidByPerson sums incoming transactions per linked person. Links to ids
// that are not on the roster are simply never looked up.
func paidByPerson(txs []core.Transaction) map[core.ID]float64 {
	sorted := sortedTransactions(txs)
	paid := make(map[core.ID]float64)
	for _, t := range sorted {
		if t.Type != core.Income || t.PlayerID.IsZero() {
			continue
		}
		paid[t.PlayerID] += t.Amount.Float()
	}
	return paid
}

func actuals(s core.RosterState, roster []core.Person, b Budget) Actuals {
	var a Actuals
	for _, t := range sortedTransactions(s.Transactions) {
		switch t.Type {
		case core.Income:
			a.TransactionIncome += t.Amount.Float()
		case core.Outflow:
			a.ActualExpense += t.Amount.Float()
			if t.Category == core.OrgFeesCategory {
				a.OrgFeesPaid += t.Amount.Float()
			}
		}
	}
	for _, p := range roster {
		a.TotalPlayerSponsorship += p.Sponsorship.Float()
		a.TotalPlayerCredits += p.Credit.Float()
	}

	a.TotalEffectiveIncome = a.TransactionIncome + b.DirectTeamSponsorship + a.TotalPlayerSponsorship + a.TotalPlayerCredits
	a.BankBalance = a.TotalEffectiveIncome - a.ActualExpense
	a.OrgFeesRemaining = core.NonNegative(b.TotalOrgFees - a.OrgFeesPaid)
	return a
}

func sortedTransactions(txs []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
