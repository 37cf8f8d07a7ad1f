package report

import (
	"bytes"
	"strings"
	"testing"

	"teambudget/internal/core"
	"teambudget/internal/engine"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{1234.56, "$1,234.56"},
		{1234567.891, "$1,234,567.89"},
		{0.125, "$0.13"},
		{-80, "-$80.00"},
		{-1052.5, "-$1,052.50"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRefundFor(t *testing.T) {
	tests := []struct {
		balance float64
		players int
		want    float64
	}{
		{300, 3, 100},
		{-200, 4, -50},
		{500, 0, 0},
	}
	for _, tt := range tests {
		if got := RefundFor(tt.balance, tt.players).PerPlayer; got != tt.want {
			t.Errorf("RefundFor(%v, %d) = %v, want %v", tt.balance, tt.players, got, tt.want)
		}
	}
}

func sampleState() core.RosterState {
	s := core.DefaultState()
	s.ExtraGames = 1
	s.Roster = []core.Person{
		{ID: 10, Type: core.Player, FirstName: "Ana", Jersey: "7", PackageType: core.FullPackage},
		{ID: 11, Type: core.Player, PackageType: core.PartialPackage, Sponsorship: 2000},
		{ID: 12, Type: core.Coach, FirstName: "Lee", PackageType: core.FullPackage},
	}
	s.Tournaments = []core.LineItem{{ID: 20, Name: "Spring Open", Cost: 600}, {ID: 21, Cost: 200}}
	s.TeamSponsorships = []core.Sponsorship{{ID: 30, Name: "Bakery", Amount: 100}}
	s.Transactions = []core.Transaction{
		{ID: 40, Date: "2026-01-05", Description: "Ana - deposit", Amount: 500, Type: core.Income, PlayerID: 10},
		{ID: 41, Date: "2026-02-01", Description: "fees", Amount: 300, Type: core.Outflow, Category: core.OrgFeesCategory},
		{ID: 42, Date: "2026-02-01", Description: "later id", Amount: 10, Type: core.Income},
		{ID: 43, Description: "undated", Amount: 1, Type: core.Income},
	}
	return s
}

func TestBuildBudget(t *testing.T) {
	s := sampleState()
	b := BuildBudget(s, engine.Compute(s))

	if len(b.Players) != 2 || len(b.Coaches) != 1 {
		t.Fatalf("players=%d coaches=%d", len(b.Players), len(b.Coaches))
	}
	if b.Players[1].Name != "Unnamed player" {
		t.Fatalf("unexpected fallback name %q", b.Players[1].Name)
	}
	if got := b.TeamExpenses.Tournaments[1].Label; got != "Tournament 2" {
		t.Fatalf("unnamed tournament label = %q", got)
	}
	// 850 + 750 players, 275 coach, 150 for one extra game
	if b.OrgFees.Total != 2025 || b.OrgFees.ExtraGamesCount != 1 {
		t.Fatalf("unexpected org fees %+v", b.OrgFees)
	}
	if b.TeamExpenses.Total != 2825 {
		t.Fatalf("team budget total = %v, want 2825", b.TeamExpenses.Total)
	}
	if b.Overflow <= 0 {
		t.Fatalf("large sponsorship should overflow, got %v", b.Overflow)
	}
}

func TestBuildLedger(t *testing.T) {
	s := sampleState()
	r := engine.Compute(s)
	l := BuildLedger(s, r)

	if l.Cash.BankBalance != r.Actuals.BankBalance || l.Refund.PlayerCount != 2 {
		t.Fatalf("unexpected cash/refund %+v %+v", l.Cash, l.Refund)
	}
	if l.OrgFees.Paid != 300 {
		t.Fatalf("org fees paid = %v", l.OrgFees.Paid)
	}
	if len(l.Payments) != 2 || l.Payments[0].Paid != 500 {
		t.Fatalf("unexpected payments %+v", l.Payments)
	}
	if l.Payments[0].Settled || !l.Payments[1].Settled {
		t.Fatalf("settled flags wrong: %+v", l.Payments)
	}

	var ids []core.ID
	for _, h := range l.History {
		ids = append(ids, h.ID)
	}
	want := []core.ID{42, 41, 40, 43}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("history order = %v, want %v", ids, want)
		}
	}
	if l.History[2].PlayerName != "Ana" {
		t.Fatalf("linked player name not resolved")
	}
}

func TestWriteReports(t *testing.T) {
	s := sampleState()
	r := engine.Compute(s)

	var buf bytes.Buffer
	if err := WriteBudget(&buf, BuildBudget(s, r)); err != nil {
		t.Fatalf("WriteBudget: %v", err)
	}
	if !strings.Contains(buf.String(), "Spring Open") || !strings.Contains(buf.String(), "$600.00") {
		t.Fatalf("budget text missing tournament line:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteLedger(&buf, BuildLedger(s, r)); err != nil {
		t.Fatalf("WriteLedger: %v", err)
	}
	if !strings.Contains(buf.String(), "PAID") {
		t.Fatalf("ledger text missing settled marker:\n%s", buf.String())
	}
}
