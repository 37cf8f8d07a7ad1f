package engine

import (
	"math"
	"math/rand"
	"testing"

	"teambudget/internal/core"
)

const tolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func zeroFees() core.FeeSchedule {
	return core.FeeSchedule{}
}

func sampleState() core.RosterState {
	s := core.DefaultState()
	s.ExtraGames = 2
	s.Roster = []core.Person{
		{ID: 1, Type: core.Player, FirstName: "Ana", PackageType: core.FullPackage},
		{ID: 2, Type: core.Player, FirstName: "Bea", PackageType: core.PartialPackage, Extras: core.NewExtras(core.CageJacket)},
		{ID: 3, Type: core.Coach, FirstName: "Cy", PackageType: core.FullPackage, Extras: core.NewExtras(core.ThirdJersey)},
		{ID: 4, Type: core.Coach, FirstName: "Dee", PackageType: core.PartialPackage},
	}
	s.Tournaments = []core.LineItem{{ID: 10, Name: "Spring Classic", Cost: 1000}, {ID: 11, Name: "Summer Slam", Cost: 500}}
	s.Expenses = []core.LineItem{{ID: 20, Name: "Field rental", Cost: 300}, {ID: 21, Name: "Blank while editing"}}
	s.TeamSponsorships = []core.Sponsorship{{ID: 30, Name: "Local Diner", Amount: 400}}
	s.Transactions = []core.Transaction{
		{ID: 40, Date: "2026-02-01", Description: "Ana - deposit", Amount: 500, Type: core.Income, Category: "Player Fees", PlayerID: 1},
		{ID: 41, Date: "2026-02-02", Description: "Removed player", Amount: 100, Type: core.Income, Category: "Player Fees", PlayerID: 999},
		{ID: 42, Date: "2026-02-03", Description: "Org invoice", Amount: 1000, Type: core.Outflow, Category: core.OrgFeesCategory},
		{ID: 43, Date: "2026-02-04", Description: "Umpires", Amount: 200, Type: core.Outflow, Category: "Umpire Fees"},
	}
	return s
}

func TestComputeAggregates(t *testing.T) {
	r := Compute(sampleState())

	checks := []struct {
		name      string
		got, want float64
	}{
		{"tournamentTotal", r.Budget.TournamentTotal, 1500},
		{"otherExpensesTotal", r.Budget.OtherExpensesTotal, 300},
		{"coachExpenses", r.Budget.CoachExpenses, 275 + 65 + 65},
		{"playerOrgFees", r.Budget.PlayerOrgFees, 850 + 750 + 90},
		{"extraGamesCost", r.Budget.ExtraGamesCost, 300},
		{"sharedExpensePool", r.Budget.SharedExpensePool, 1500 + 300 + 405 + 300},
		{"totalBudgetedExpenses", r.Budget.TotalBudgetedExpenses, 2505 + 1690},
		{"totalOrgFees", r.Budget.TotalOrgFees, 1690 + 405 + 300},
		{"directTeamSponsorship", r.Budget.DirectTeamSponsorship, 400},
		{"perPlayerShare", r.PerPlayerShare, (2505.0 - 400) / 2},
		{"transactionIncome", r.Actuals.TransactionIncome, 600},
		{"actualExpense", r.Actuals.ActualExpense, 1200},
		{"orgFeesPaid", r.Actuals.OrgFeesPaid, 1000},
		{"orgFeesRemaining", r.Actuals.OrgFeesRemaining, 2395 - 1000},
		{"bankBalance", r.Actuals.BankBalance, 600 + 400 - 1200},
	}
	for _, c := range checks {
		if !floatEquals(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if r.PlayerCount != 2 {
		t.Errorf("playerCount = %d, want 2", r.PlayerCount)
	}

	ana := r.Person(1)
	if !floatEquals(ana.GrossLiability, 850+1052.5) || !floatEquals(ana.FinalOwed, 1902.5) {
		t.Errorf("unexpected Ana breakdown %+v", ana)
	}
	if !floatEquals(ana.Paid, 500) || !floatEquals(ana.Outstanding, 1402.5) {
		t.Errorf("unexpected Ana payments %+v", ana)
	}
	bea := r.Person(2)
	if !floatEquals(bea.Base, 750) || !floatEquals(bea.Extras, 90) || !floatEquals(bea.FinalOwed, 750+90+1052.5) {
		t.Errorf("unexpected Bea breakdown %+v", bea)
	}
	if !floatEquals(r.TotalCollections, ana.FinalOwed+bea.FinalOwed) {
		t.Errorf("totalCollections = %v", r.TotalCollections)
	}
}

func TestZeroRoster(t *testing.T) {
	s := core.DefaultState()
	s.Tournaments = []core.LineItem{{ID: 1, Cost: 5000}}
	s.ExtraGames = 3

	r := Compute(s)
	if r.PerPlayerShare != 0 {
		t.Fatalf("expected zero share with no players, got %v", r.PerPlayerShare)
	}
	if len(r.People) != 0 {
		t.Fatalf("expected no breakdowns, got %d", len(r.People))
	}
	if math.IsNaN(r.PerPlayerShare) || math.IsInf(r.PerPlayerShare, 0) {
		t.Fatalf("share is not finite")
	}
}

func TestFeeSymmetry(t *testing.T) {
	s := core.DefaultState()
	s.Roster = []core.Person{{ID: 1, Type: core.Player, PackageType: core.FullPackage}}

	r := Compute(s)
	if got := r.Person(1).FinalOwed; got != s.FeeStructure.FullUniform.Float() {
		t.Fatalf("finalOwed = %v, want %v", got, s.FeeStructure.FullUniform)
	}
}

func TestOverflowRedistribution(t *testing.T) {
	base := core.DefaultState()
	base.FeeStructure = zeroFees()
	base.Tournaments = []core.LineItem{{ID: 1, Cost: 1000}}
	base.Roster = []core.Person{
		{ID: 1, Type: core.Player, PackageType: core.FullPackage},
		{ID: 2, Type: core.Player, PackageType: core.FullPackage},
	}
	without := Compute(base).Person(2).FinalOwed

	sponsored := base.Clone()
	sponsored.Roster[0].Sponsorship = 1500
	r := Compute(sponsored)

	if got := r.Person(2).FinalOwed; !(got < without) {
		t.Fatalf("expected B to owe less than %v, got %v", without, got)
	}
	if r.Person(1).FinalOwed != 0 {
		t.Fatalf("A should owe nothing, got %v", r.Person(1).FinalOwed)
	}
	if !floatEquals(r.TotalPlayerOverflow, 1500) {
		t.Fatalf("final overflow = %v, want 1500", r.TotalPlayerOverflow)
	}
}

// The solver stops after exactly three passes even though the shares have
// not settled yet.
func TestSolverRunsExactlyThreePasses(t *testing.T) {
	s := core.DefaultState()
	s.FeeStructure = zeroFees()
	s.Tournaments = []core.LineItem{{ID: 1, Cost: 1000}}
	s.Roster = []core.Person{
		{ID: 1, Type: core.Player, Sponsorship: 700},
		{ID: 2, Type: core.Player},
	}

	// pass 1: share 500, overflow 200
	// pass 2: share 400, overflow 300
	// pass 3: share 350, overflow 350  (the fixed point would be 300)
	r := Compute(s)
	if !floatEquals(r.PerPlayerShare, 350) {
		t.Fatalf("share = %v, want 350", r.PerPlayerShare)
	}
	if !floatEquals(r.Person(2).FinalOwed, 350) {
		t.Fatalf("B finalOwed = %v, want 350", r.Person(2).FinalOwed)
	}
	if !floatEquals(r.Person(1).Overflow, 350) || !floatEquals(r.TotalPlayerOverflow, 350) {
		t.Fatalf("overflow = %v / %v, want 350", r.Person(1).Overflow, r.TotalPlayerOverflow)
	}
}

func TestPaymentReconciliationIdempotence(t *testing.T) {
	s := sampleState()
	before := Compute(s).Person(2)

	added := s.Clone()
	added.Transactions = append(added.Transactions, core.Transaction{
		ID: 99, Date: "2026-03-01", Description: "Bea", Amount: 250, Type: core.Income, PlayerID: 2,
	})
	mid := Compute(added).Person(2)
	if !floatEquals(mid.Paid, before.Paid+250) {
		t.Fatalf("paid after add = %v, want %v", mid.Paid, before.Paid+250)
	}

	removed := added.Clone()
	removed.Transactions = removed.Transactions[:len(removed.Transactions)-1]
	after := Compute(removed).Person(2)
	if after.Paid != before.Paid || after.Outstanding != before.Outstanding {
		t.Fatalf("paid/outstanding not restored: before %+v after %+v", before, after)
	}
}

func TestDanglingReferenceTolerance(t *testing.T) {
	s := sampleState()
	s.Transactions = []core.Transaction{{ID: 1, Amount: 700, Type: core.Income, PlayerID: 123456}}

	r := Compute(s)
	for id, pr := range r.People {
		if pr.Paid != 0 {
			t.Fatalf("person %d paid = %v, want 0", id, pr.Paid)
		}
	}
	if r.Actuals.TransactionIncome != 700 {
		t.Fatalf("income = %v, want 700", r.Actuals.TransactionIncome)
	}
}

func TestOutflowLinkedToPlayerIsNotPayment(t *testing.T) {
	s := sampleState()
	s.Transactions = []core.Transaction{{ID: 1, Amount: 50, Type: core.Outflow, PlayerID: 1}}
	if got := Compute(s).Person(1).Paid; got != 0 {
		t.Fatalf("paid = %v, want 0", got)
	}
}

func TestBankBalanceIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		s := randomState(rng)
		r := Compute(s)
		a := r.Actuals
		want := a.TransactionIncome + r.Budget.DirectTeamSponsorship + a.TotalPlayerSponsorship + a.TotalPlayerCredits - a.ActualExpense
		if a.BankBalance != want {
			t.Fatalf("iteration %d: bankBalance = %v, want %v", i, a.BankBalance, want)
		}
	}
}

func TestCoachExclusion(t *testing.T) {
	s := sampleState()
	s.FeeStructure.CoachFull = 100000
	s.Roster[2].Sponsorship = 50
	s.Roster[2].Credit = 20

	r := Compute(s)
	for _, id := range []core.ID{3, 4} {
		pr := r.Person(id)
		if pr.FinalOwed != 0 || pr.Share != 0 || pr.Outstanding != 0 || pr.Overflow != 0 {
			t.Fatalf("coach %d carries liability: %+v", id, pr)
		}
	}
	if !floatEquals(r.Person(3).Base, 100000) {
		t.Fatalf("coach base not reported: %+v", r.Person(3))
	}
}

func TestOrderingIndependence(t *testing.T) {
	s := sampleState()
	want := Compute(s)

	shuffled := s.Clone()
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(shuffled.Roster), func(i, j int) {
		shuffled.Roster[i], shuffled.Roster[j] = shuffled.Roster[j], shuffled.Roster[i]
	})
	rng.Shuffle(len(shuffled.Transactions), func(i, j int) {
		shuffled.Transactions[i], shuffled.Transactions[j] = shuffled.Transactions[j], shuffled.Transactions[i]
	})
	rng.Shuffle(len(shuffled.Tournaments), func(i, j int) {
		shuffled.Tournaments[i], shuffled.Tournaments[j] = shuffled.Tournaments[j], shuffled.Tournaments[i]
	})

	got := Compute(shuffled)
	if got.Actuals != want.Actuals || got.Budget != want.Budget || got.PerPlayerShare != want.PerPlayerShare {
		t.Fatalf("result depends on ordering")
	}
	for id, pr := range want.People {
		if got.People[id] != pr {
			t.Fatalf("person %d differs: %+v vs %+v", id, got.People[id], pr)
		}
	}
}

func TestNegativeExtraGamesClamped(t *testing.T) {
	s := core.DefaultState()
	s.ExtraGames = -4
	if got := Compute(s).Budget.ExtraGamesCost; got != 0 {
		t.Fatalf("extraGamesCost = %v, want 0", got)
	}
}

func randomState(rng *rand.Rand) core.RosterState {
	s := core.DefaultState()
	id := core.ID(1)
	next := func() core.ID { id++; return id }
	amount := func(max float64) core.Amount { return core.Amount(math.Round(rng.Float64()*max*100) / 100) }

	for i := 0; i < rng.Intn(12); i++ {
		typ := core.Player
		if rng.Intn(4) == 0 {
			typ = core.Coach
		}
		s.Roster = append(s.Roster, core.Person{
			ID: next(), Type: typ, PackageType: core.FullPackage,
			Sponsorship: amount(400), Credit: amount(100),
		})
	}
	for i := 0; i < rng.Intn(5); i++ {
		s.TeamSponsorships = append(s.TeamSponsorships, core.Sponsorship{ID: next(), Amount: amount(2000)})
	}
	for i := 0; i < rng.Intn(40); i++ {
		typ := core.Income
		if rng.Intn(2) == 0 {
			typ = core.Outflow
		}
		s.Transactions = append(s.Transactions, core.Transaction{ID: next(), Amount: amount(900), Type: typ})
	}
	return s
}
