package core

import "encoding/json"

// Extra is an optional gear item billed on top of a package.
type Extra uint8

const (
	ThirdJersey Extra = 1 << iota
	CageJacket
)

// Extras is a set over the closed Extra enumeration. It encodes as a JSON
// array of names; unknown names are dropped on decode.
type Extras uint8

var allExtras = []Extra{ThirdJersey, CageJacket}

func (e Extra) String() string {
	switch e {
	case ThirdJersey:
		return "thirdJersey"
	case CageJacket:
		return "cageJacket"
	}
	return ""
}

// ParseExtra maps a wire name to an Extra.
func ParseExtra(s string) (Extra, bool) {
	for _, e := range allExtras {
		if e.String() == s {
			return e, true
		}
	}
	return 0, false
}

func NewExtras(items ...Extra) Extras {
	var s Extras
	for _, e := range items {
		s = s.With(e)
	}
	return s
}

func (s Extras) Has(e Extra) bool {
	return s&Extras(e) != 0
}

func (s Extras) With(e Extra) Extras {
	return s | Extras(e)
}

func (s Extras) Without(e Extra) Extras {
	return s &^ Extras(e)
}

func (s Extras) Toggle(e Extra) Extras {
	if s.Has(e) {
		return s.Without(e)
	}
	return s.With(e)
}

// List returns the members in enumeration order.
func (s Extras) List() []Extra {
	out := make([]Extra, 0, len(allExtras))
	for _, e := range allExtras {
		if s.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s Extras) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(allExtras))
	for _, e := range s.List() {
		names = append(names, e.String())
	}
	return json.Marshal(names)
}

func (s *Extras) UnmarshalJSON(data []byte) error {
	var names []any
	if err := json.Unmarshal(data, &names); err != nil {
		// not an array (null, string, number): no extras
		*s = 0
		return nil
	}
	var out Extras
	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			continue
		}
		if e, ok := ParseExtra(name); ok {
			out = out.With(e)
		}
	}
	*s = out
	return nil
}
