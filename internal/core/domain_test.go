package core

import (
	"encoding/json"
	"testing"
)

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Date:        "2026-03-01",
		Description: "Spring fees",
		Amount:      250,
		Type:        Income,
		Category:    "Player Fees",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []TransactionInput{
		{Date: "2026-03-01", Description: "", Amount: 1, Type: Income},
		{Date: "2026-03-01", Description: "a", Amount: 0, Type: Income},
		{Date: "2026-03-01", Description: "a", Amount: 1, Type: "sideways"},
		{Date: "03/01/2026", Description: "a", Amount: 1, Type: Outflow},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestIDJSON(t *testing.T) {
	cases := []struct {
		in   string
		want ID
	}{
		{`1718000000000`, 1718000000000},
		{`"1718000000000"`, 1718000000000},
		{`1718000000000.0`, 1718000000000},
		{`""`, NoID},
		{`null`, NoID},
		{`"abc"`, NoID},
		{`1.5`, NoID},
	}
	for _, tc := range cases {
		var got ID
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.in, tc.want, got)
		}
	}

	b, _ := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: 42})
	if string(b) != `{"a":42,"b":""}` {
		t.Fatalf("unexpected encoding %s", b)
	}
}

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator()
	g.Observe(ID(1 << 50))
	prev := g.Next()
	if prev <= ID(1<<50) {
		t.Fatalf("expected id above observed, got %d", prev)
	}
	for i := 0; i < 100; i++ {
		next := g.Next()
		if next <= prev {
			t.Fatalf("ids not increasing: %d then %d", prev, next)
		}
		prev = next
	}
}

func TestExtrasSet(t *testing.T) {
	var e Extras
	e = e.Toggle(CageJacket)
	if !e.Has(CageJacket) || e.Has(ThirdJersey) {
		t.Fatalf("unexpected set %v", e.List())
	}
	e = e.Toggle(CageJacket)
	if e != 0 {
		t.Fatalf("expected empty set after double toggle")
	}

	var decoded Extras
	if err := json.Unmarshal([]byte(`["cageJacket","bogus","thirdJersey","cageJacket",7]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != NewExtras(ThirdJersey, CageJacket) {
		t.Fatalf("unexpected decode %v", decoded.List())
	}
	b, _ := json.Marshal(decoded)
	if string(b) != `["thirdJersey","cageJacket"]` {
		t.Fatalf("unexpected encoding %s", b)
	}

	if err := json.Unmarshal([]byte(`null`), &decoded); err != nil || decoded != 0 {
		t.Fatalf("null should decode to empty set, got %v (err=%v)", decoded, err)
	}
}

func TestFeeSchedulePackageCost(t *testing.T) {
	f := DefaultFees()
	cases := []struct {
		t    PersonType
		p    PackageType
		want float64
	}{
		{Player, FullPackage, 850},
		{Player, PartialPackage, 750},
		{Player, NoPackage, 0},
		{Coach, FullPackage, 275},
		{Coach, PartialPackage, 65},
		{Coach, NoPackage, 0},
	}
	for _, tc := range cases {
		if got := f.PackageCost(tc.t, tc.p); got != tc.want {
			t.Fatalf("%s/%s: expected %v, got %v", tc.t, tc.p, tc.want, got)
		}
	}
	if got := f.ExtrasCost(NewExtras(ThirdJersey, CageJacket)); got != 155 {
		t.Fatalf("expected extras 155, got %v", got)
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	s := DefaultState()
	s.Roster = append(s.Roster, Person{ID: 1, Type: Player, FirstName: "A"})
	c := s.Clone()
	c.Roster[0].FirstName = "B"
	if s.Roster[0].FirstName != "A" {
		t.Fatalf("clone shares roster backing array")
	}
}
