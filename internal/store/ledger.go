package store

import (
	"context"
	"fmt"
	"math"
	"strings"

	"teambudget/internal/core"
	"teambudget/internal/log"
)

// AddTransaction records a ledger entry. The amount is stored positive and
// the type carries the direction. Income linked to a known person gets the
// person's name prefixed to its description.
func (s *Store) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var added core.Transaction
	err := s.apply(ctx, "add_transaction", func(st *core.RosterState) error {
		added = s.transactionFrom(s.ids.Next(), in)
		if p, ok := st.PersonByID(added.PlayerID); ok && added.Type == core.Income {
			if name := p.FullName(); name != "" {
				added.Description = name + " - " + added.Description
			}
		}
		st.Transactions = append(st.Transactions, added)
		return nil
	})
	if err != nil {
		return added, err
	}
	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithTransaction(int64(added.ID), string(added.Type), added.Amount.Float(), added.Category).
			ToSlice()...)
	return added, nil
}

// UpdateTransaction replaces the editable fields of an existing entry. The
// description is stored as given.
func (s *Store) UpdateTransaction(ctx context.Context, id core.ID, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var updated core.Transaction
	err := s.apply(ctx, "update_transaction", func(st *core.RosterState) error {
		for i := range st.Transactions {
			if st.Transactions[i].ID == id {
				updated = s.transactionFrom(id, in)
				st.Transactions[i] = updated
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	})
	return updated, err
}

func (s *Store) RemoveTransaction(ctx context.Context, id core.ID, ok ConfirmFunc) error {
	if err := confirm(ok, "Delete Tx?"); err != nil {
		return err
	}
	return s.apply(ctx, "remove_transaction", func(st *core.RosterState) error {
		for i, t := range st.Transactions {
			if t.ID == id {
				st.Transactions = append(st.Transactions[:i], st.Transactions[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	})
}

// RemoveTransactions deletes every listed entry and reports how many were
// removed. Unknown ids are skipped; if none match, ErrNotFound is returned.
func (s *Store) RemoveTransactions(ctx context.Context, ids []core.ID, ok ConfirmFunc) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := confirm(ok, fmt.Sprintf("Delete %d transactions?", len(ids))); err != nil {
		return 0, err
	}
	drop := make(map[core.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	removed := 0
	err := s.apply(ctx, "remove_transactions", func(st *core.RosterState) error {
		kept := st.Transactions[:0]
		for _, t := range st.Transactions {
			if _, gone := drop[t.ID]; gone {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		if removed == 0 {
			return fmt.Errorf("transactions: %w", core.ErrNotFound)
		}
		st.Transactions = kept
		return nil
	})
	return removed, err
}

// Replace swaps in an imported state wholesale.
func (s *Store) Replace(ctx context.Context, next core.RosterState) error {
	next = next.Clone()
	s.ids.Observe(next.MaxID())
	return s.apply(ctx, "replace", func(st *core.RosterState) error {
		*st = next
		return nil
	})
}

// Reset returns the store to the default empty state.
func (s *Store) Reset(ctx context.Context, ok ConfirmFunc) error {
	if err := confirm(ok, "Reset all data?"); err != nil {
		return err
	}
	return s.apply(ctx, "reset", func(st *core.RosterState) error {
		*st = core.DefaultState()
		return nil
	})
}

func (s *Store) transactionFrom(id core.ID, in core.TransactionInput) core.Transaction {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.now().Format(core.DateLayout)
	}
	return core.Transaction{
		ID:          id,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Amount:      core.Amount(math.Abs(in.Amount.Float())),
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		PlayerID:    in.PlayerID,
	}
}
