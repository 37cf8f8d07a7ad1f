package store

import (
	"context"
	"fmt"

	"teambudget/internal/core"
)

// PersonPatch lists the person fields to change; nil fields are left alone.
type PersonPatch struct {
	Type        *core.PersonType  `json:"type,omitempty"`
	FirstName   *string           `json:"firstName,omitempty"`
	LastName    *string           `json:"lastName,omitempty"`
	Jersey      *string           `json:"jersey,omitempty"`
	PackageType *core.PackageType `json:"packageType,omitempty"`
	Sponsorship *core.Amount      `json:"sponsorship,omitempty"`
	Credit      *core.Amount      `json:"credit,omitempty"`
}

// LineItemPatch edits a tournament or expense.
type LineItemPatch struct {
	Name *string      `json:"name,omitempty"`
	Cost *core.Amount `json:"cost,omitempty"`
}

type SponsorshipPatch struct {
	Name   *string      `json:"name,omitempty"`
	Amount *core.Amount `json:"amount,omitempty"`
}

// AddPerson appends a blank person. Players start on the full package,
// coaches on none.
func (s *Store) AddPerson(ctx context.Context, t core.PersonType) (core.Person, error) {
	if !t.Valid() {
		return core.Person{}, core.ErrInvalidType
	}
	var added core.Person
	err := s.apply(ctx, "add_person", func(st *core.RosterState) error {
		pkg := core.FullPackage
		if t == core.Coach {
			pkg = core.NoPackage
		}
		added = core.Person{ID: s.ids.Next(), Type: t, PackageType: pkg}
		st.Roster = append(st.Roster, added)
		return nil
	})
	return added, err
}

func (s *Store) UpdatePerson(ctx context.Context, id core.ID, p PersonPatch) error {
	if p.Type != nil && !p.Type.Valid() {
		return core.ErrInvalidType
	}
	if p.PackageType != nil && !p.PackageType.Valid() {
		return core.ErrInvalidPackage
	}
	return s.apply(ctx, "update_person", func(st *core.RosterState) error {
		i := personIndex(st, id)
		if i < 0 {
			return fmt.Errorf("person %s: %w", id, core.ErrNotFound)
		}
		person := &st.Roster[i]
		if p.Type != nil {
			person.Type = *p.Type
		}
		if p.FirstName != nil {
			person.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			person.LastName = *p.LastName
		}
		if p.Jersey != nil {
			person.Jersey = *p.Jersey
		}
		if p.PackageType != nil {
			person.PackageType = *p.PackageType
		}
		if p.Sponsorship != nil {
			person.Sponsorship = *p.Sponsorship
		}
		if p.Credit != nil {
			person.Credit = *p.Credit
		}
		return nil
	})
}

// ToggleExtra adds the extra when absent and removes it when present.
func (s *Store) ToggleExtra(ctx context.Context, id core.ID, e core.Extra) error {
	return s.apply(ctx, "toggle_extra", func(st *core.RosterState) error {
		i := personIndex(st, id)
		if i < 0 {
			return fmt.Errorf("person %s: %w", id, core.ErrNotFound)
		}
		st.Roster[i].Extras = st.Roster[i].Extras.Toggle(e)
		return nil
	})
}

// RemovePerson deletes a roster entry. Transactions linked to it are kept and
// simply stop matching anyone.
func (s *Store) RemovePerson(ctx context.Context, id core.ID, ok ConfirmFunc) error {
	if err := confirm(ok, "Remove?"); err != nil {
		return err
	}
	return s.apply(ctx, "remove_person", func(st *core.RosterState) error {
		i := personIndex(st, id)
		if i < 0 {
			return fmt.Errorf("person %s: %w", id, core.ErrNotFound)
		}
		st.Roster = append(st.Roster[:i], st.Roster[i+1:]...)
		return nil
	})
}

func personIndex(st *core.RosterState, id core.ID) int {
	for i, p := range st.Roster {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) AddTournament(ctx context.Context) (core.LineItem, error) {
	return s.addLineItem(ctx, "add_tournament", func(st *core.RosterState) *[]core.LineItem { return &st.Tournaments })
}

func (s *Store) UpdateTournament(ctx context.Context, id core.ID, p LineItemPatch) error {
	return s.updateLineItem(ctx, "update_tournament", id, p, func(st *core.RosterState) *[]core.LineItem { return &st.Tournaments })
}

func (s *Store) RemoveTournament(ctx context.Context, id core.ID) error {
	return s.removeLineItem(ctx, "remove_tournament", id, func(st *core.RosterState) *[]core.LineItem { return &st.Tournaments })
}

func (s *Store) AddExpense(ctx context.Context) (core.LineItem, error) {
	return s.addLineItem(ctx, "add_expense", func(st *core.RosterState) *[]core.LineItem { return &st.Expenses })
}

func (s *Store) UpdateExpense(ctx context.Context, id core.ID, p LineItemPatch) error {
	return s.updateLineItem(ctx, "update_expense", id, p, func(st *core.RosterState) *[]core.LineItem { return &st.Expenses })
}

func (s *Store) RemoveExpense(ctx context.Context, id core.ID) error {
	return s.removeLineItem(ctx, "remove_expense", id, func(st *core.RosterState) *[]core.LineItem { return &st.Expenses })
}

type lineItems func(*core.RosterState) *[]core.LineItem

func (s *Store) addLineItem(ctx context.Context, op string, list lineItems) (core.LineItem, error) {
	var added core.LineItem
	err := s.apply(ctx, op, func(st *core.RosterState) error {
		added = core.LineItem{ID: s.ids.Next()}
		items := list(st)
		*items = append(*items, added)
		return nil
	})
	return added, err
}

func (s *Store) updateLineItem(ctx context.Context, op string, id core.ID, p LineItemPatch, list lineItems) error {
	return s.apply(ctx, op, func(st *core.RosterState) error {
		items := *list(st)
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if p.Name != nil {
				items[i].Name = *p.Name
			}
			if p.Cost != nil {
				items[i].Cost = *p.Cost
			}
			return nil
		}
		return fmt.Errorf("item %s: %w", id, core.ErrNotFound)
	})
}

func (s *Store) removeLineItem(ctx context.Context, op string, id core.ID, list lineItems) error {
	return s.apply(ctx, op, func(st *core.RosterState) error {
		items := list(st)
		for i, it := range *items {
			if it.ID == id {
				*items = append((*items)[:i], (*items)[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("item %s: %w", id, core.ErrNotFound)
	})
}

func (s *Store) AddSponsorship(ctx context.Context) (core.Sponsorship, error) {
	var added core.Sponsorship
	err := s.apply(ctx, "add_sponsorship", func(st *core.RosterState) error {
		added = core.Sponsorship{ID: s.ids.Next()}
		st.TeamSponsorships = append(st.TeamSponsorships, added)
		return nil
	})
	return added, err
}

func (s *Store) UpdateSponsorship(ctx context.Context, id core.ID, p SponsorshipPatch) error {
	return s.apply(ctx, "update_sponsorship", func(st *core.RosterState) error {
		for i := range st.TeamSponsorships {
			sp := &st.TeamSponsorships[i]
			if sp.ID != id {
				continue
			}
			if p.Name != nil {
				sp.Name = *p.Name
			}
			if p.Amount != nil {
				sp.Amount = *p.Amount
			}
			return nil
		}
		return fmt.Errorf("sponsorship %s: %w", id, core.ErrNotFound)
	})
}

func (s *Store) RemoveSponsorship(ctx context.Context, id core.ID) error {
	return s.apply(ctx, "remove_sponsorship", func(st *core.RosterState) error {
		for i, sp := range st.TeamSponsorships {
			if sp.ID == id {
				st.TeamSponsorships = append(st.TeamSponsorships[:i], st.TeamSponsorships[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("sponsorship %s: %w", id, core.ErrNotFound)
	})
}
