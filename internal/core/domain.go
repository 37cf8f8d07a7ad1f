package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Player PersonType = "player"
	Coach  PersonType = "coach"

	FullPackage    PackageType = "full"
	PartialPackage PackageType = "partial"
	NoPackage      PackageType = "none"

	Income  TransactionType = "in"
	Outflow TransactionType = "out"
)

// OrgFeesCategory is the expense category whose transactions count as
// payments towards the organization fees.
const OrgFeesCategory = "Titan Fees"

// DateLayout is the wire format of Transaction.Date.
const DateLayout = "2006-01-02"

type (
	PersonType      string
	PackageType     string
	TransactionType string

	Person struct {
		ID          ID          `json:"id"`
		Type        PersonType  `json:"type"`
		FirstName   string      `json:"firstName"`
		LastName    string      `json:"lastName"`
		Jersey      string      `json:"jersey"`
		PackageType PackageType `json:"packageType"`
		Extras      Extras      `json:"extras"`
		Sponsorship Amount      `json:"sponsorship"`
		Credit      Amount      `json:"credit"`
	}

	// LineItem is a tournament or a generic team expense.
	LineItem struct {
		ID   ID     `json:"id"`
		Name string `json:"name"`
		Cost Amount `json:"cost"`
	}

	// Sponsorship is a team-level sponsorship that reduces the shared pool.
	Sponsorship struct {
		ID     ID     `json:"id"`
		Name   string `json:"name"`
		Amount Amount `json:"amount"`
	}

	Transaction struct {
		ID          ID              `json:"id"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      Amount          `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		PlayerID    ID              `json:"playerId"`
	}

	// TransactionInput carries the user-editable fields of a transaction.
	TransactionInput struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      Amount          `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		PlayerID    ID              `json:"playerId"`
	}
)

// Suggested ledger categories. Category is free text; these only seed pickers.
var (
	IncomeCategories  = []string{"Player Fees", "Sponsorship", "Fundraising", "Other Income"}
	ExpenseCategories = []string{"Tournament Fee", "Uniforms/Apparel", "Equipment", "Hotel/Travel", "Umpire Fees", "Admin/Bank Fees", OrgFeesCategory, "Other Expense"}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidPackage     = errors.New("invalid package type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrNotFound           = errors.New("not found")
	ErrNotConfirmed       = errors.New("action not confirmed")
)

func (t PersonType) Valid() bool {
	return t == Player || t == Coach
}

func (p PackageType) Valid() bool {
	switch p {
	case FullPackage, PartialPackage, NoPackage:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Outflow
}

// FullName joins first and last name the way ledger descriptions show it.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Person) IsPlayer() bool {
	return p.Type == Player
}

// Time parses the transaction date. ok is false for blank or malformed dates.
func (t Transaction) Time() (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(t.Date))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if len(in.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if in.Amount.Float() == 0 {
		return ErrInvalidAmount
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if d := strings.TrimSpace(in.Date); d != "" {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}
