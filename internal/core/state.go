package core

// FeeSchedule holds the fixed organization price list.
type FeeSchedule struct {
	FullUniform    Amount `json:"fullUniform"`
	PartialUniform Amount `json:"partialUniform"`
	CoachFull      Amount `json:"coachFull"`
	CoachPartial   Amount `json:"coachPartial"`
	ThirdJersey    Amount `json:"thirdJersey"`
	CageJacket     Amount `json:"cageJacket"`
	GamesAfter13   Amount `json:"gamesAfter13"`
}

// Fee schedule keys as they appear on the wire.
const (
	FeeFullUniform    = "fullUniform"
	FeePartialUniform = "partialUniform"
	FeeCoachFull      = "coachFull"
	FeeCoachPartial   = "coachPartial"
	FeeThirdJersey    = "thirdJersey"
	FeeCageJacket     = "cageJacket"
	FeeGamesAfter13   = "gamesAfter13"
)

// FeeKeys lists the schedule keys in display order.
var FeeKeys = []string{
	FeeFullUniform, FeePartialUniform, FeeCoachFull, FeeCoachPartial,
	FeeThirdJersey, FeeCageJacket, FeeGamesAfter13,
}

// FeeLabels are the human labels of the schedule keys.
var FeeLabels = map[string]string{
	FeeFullUniform:    "Player Full Uniform",
	FeePartialUniform: "Player Partial Uniform",
	FeeCoachFull:      "Coach Full Package",
	FeeCoachPartial:   "Coach Partial Package",
	FeeThirdJersey:    "3rd Jersey Cost",
	FeeCageJacket:     "Cage Jacket Cost",
	FeeGamesAfter13:   "Games After 13 Cost",
}

func DefaultFees() FeeSchedule {
	return FeeSchedule{
		FullUniform:    850,
		PartialUniform: 750,
		CoachFull:      275,
		CoachPartial:   65,
		ThirdJersey:    65,
		CageJacket:     90,
		GamesAfter13:   150,
	}
}

// Field returns a pointer to the schedule entry named key.
func (f *FeeSchedule) Field(key string) (*Amount, bool) {
	switch key {
	case FeeFullUniform:
		return &f.FullUniform, true
	case FeePartialUniform:
		return &f.PartialUniform, true
	case FeeCoachFull:
		return &f.CoachFull, true
	case FeeCoachPartial:
		return &f.CoachPartial, true
	case FeeThirdJersey:
		return &f.ThirdJersey, true
	case FeeCageJacket:
		return &f.CageJacket, true
	case FeeGamesAfter13:
		return &f.GamesAfter13, true
	}
	return nil, false
}

// PackageCost is the base package price for a person of type t.
func (f FeeSchedule) PackageCost(t PersonType, p PackageType) float64 {
	switch {
	case t == Player && p == FullPackage:
		return f.FullUniform.Float()
	case t == Player && p == PartialPackage:
		return f.PartialUniform.Float()
	case t == Coach && p == FullPackage:
		return f.CoachFull.Float()
	case t == Coach && p == PartialPackage:
		return f.CoachPartial.Float()
	}
	return 0
}

// ExtrasCost sums the per-extra prices of the members of e.
func (f FeeSchedule) ExtrasCost(e Extras) float64 {
	var total float64
	if e.Has(ThirdJersey) {
		total += f.ThirdJersey.Float()
	}
	if e.Has(CageJacket) {
		total += f.CageJacket.Float()
	}
	return total
}

// TeamSettings is the team metadata block of the state.
type TeamSettings struct {
	AgeGroup   string `json:"ageGroup"`
	IsTier2    bool   `json:"isTier2"`
	HeadCoach  string `json:"headCoach"`
	Manager    string `json:"manager"`
	Season     string `json:"season"`
	ExtraGames Amount `json:"extraGames"`
}

// RosterState is the root aggregate. It is also the persisted snapshot and
// backup file schema.
type RosterState struct {
	TeamSettings

	Roster           []Person      `json:"roster"`
	Tournaments      []LineItem    `json:"tournaments"`
	Expenses         []LineItem    `json:"expenses"`
	TeamSponsorships []Sponsorship `json:"teamSponsorships"`
	Transactions     []Transaction `json:"transactions"`
	FeeStructure     FeeSchedule   `json:"feeStructure"`
}

func DefaultTeamSettings() TeamSettings {
	return TeamSettings{
		AgeGroup: "18U",
		Season:   "2026",
	}
}

// DefaultState is the state of a freshly installed tracker.
func DefaultState() RosterState {
	return RosterState{
		TeamSettings:     DefaultTeamSettings(),
		Roster:           []Person{},
		Tournaments:      []LineItem{},
		Expenses:         []LineItem{},
		TeamSponsorships: []Sponsorship{},
		Transactions:     []Transaction{},
		FeeStructure:     DefaultFees(),
	}
}

// Clone returns a deep copy; the slices of the copy are never shared.
func (s RosterState) Clone() RosterState {
	out := s
	out.Roster = append(make([]Person, 0, len(s.Roster)), s.Roster...)
	out.Tournaments = append(make([]LineItem, 0, len(s.Tournaments)), s.Tournaments...)
	out.Expenses = append(make([]LineItem, 0, len(s.Expenses)), s.Expenses...)
	out.TeamSponsorships = append(make([]Sponsorship, 0, len(s.TeamSponsorships)), s.TeamSponsorships...)
	out.Transactions = append(make([]Transaction, 0, len(s.Transactions)), s.Transactions...)
	return out
}

// Normalize replaces nil collections with empty ones.
func (s *RosterState) Normalize() {
	if s.Roster == nil {
		s.Roster = []Person{}
	}
	if s.Tournaments == nil {
		s.Tournaments = []LineItem{}
	}
	if s.Expenses == nil {
		s.Expenses = []LineItem{}
	}
	if s.TeamSponsorships == nil {
		s.TeamSponsorships = []Sponsorship{}
	}
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
}

// PersonByID returns the roster entry with the given id.
func (s RosterState) PersonByID(id ID) (Person, bool) {
	if id == NoID {
		return Person{}, false
	}
	for _, p := range s.Roster {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// PlayerCount counts player-type roster entries.
func (s RosterState) PlayerCount() int {
	n := 0
	for _, p := range s.Roster {
		if p.IsPlayer() {
			n++
		}
	}
	return n
}

// MaxID is the largest id used anywhere in the state.
func (s RosterState) MaxID() ID {
	var max ID
	bump := func(id ID) {
		if id > max {
			max = id
		}
	}
	for _, p := range s.Roster {
		bump(p.ID)
	}
	for _, t := range s.Tournaments {
		bump(t.ID)
	}
	for _, e := range s.Expenses {
		bump(e.ID)
	}
	for _, sp := range s.TeamSponsorships {
		bump(sp.ID)
	}
	for _, t := range s.Transactions {
		bump(t.ID)
	}
	return max
}
