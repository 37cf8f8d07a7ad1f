package google

import (
	"teambudget/internal/core"
	"teambudget/internal/report"
)

// ledgerRows lays out the cash summary followed by the full history.
// Amounts are plain numbers so the sheet can format and sum them.
func ledgerRows(snapshotID int64, l report.Ledger) [][]any {
	c := report.Cents
	rows := [][]any{
		{"Snapshot", snapshotID},
		{},
		{"Transaction income", c(l.Cash.TransactionIncome)},
		{"Team sponsorships", c(l.Cash.TeamSponsorships)},
		{"Player sponsorships", c(l.Cash.PlayerSponsorships)},
		{"Player credits", c(l.Cash.PlayerCredits)},
		{"Total income", c(l.Cash.TotalIncome)},
		{"Actual expenses", c(l.Cash.ActualExpenses)},
		{"Bank balance", c(l.Cash.BankBalance)},
		{"Refund per player", c(l.Refund.PerPlayer)},
		{"Org fees paid", c(l.OrgFees.Paid)},
		{"Org fees remaining", c(l.OrgFees.Remaining)},
		{},
		{"Date", "Type", "Category", "Description", "Player", "Amount"},
	}
	for _, h := range l.History {
		amount := c(h.Amount.Float())
		if h.Type == core.Outflow {
			amount = -amount
		}
		rows = append(rows, []any{h.Date, string(h.Type), h.Category, h.Description, h.PlayerName, amount})
	}
	return rows
}

// playerRows joins the fee table with payment status, one row per player.
func playerRows(b report.Budget, l report.Ledger) [][]any {
	c := report.Cents
	paid := make(map[core.ID]report.PaymentRow, len(l.Payments))
	for _, p := range l.Payments {
		paid[p.ID] = p
	}

	rows := [][]any{
		{"Name", "Jersey", "Package", "Base", "Extras", "Share", "Sponsorship", "Credit", "Owed", "Paid", "Outstanding", "Status"},
	}
	for _, r := range b.Players {
		p := paid[r.ID]
		status := "DUE"
		if p.Settled {
			status = "PAID"
		}
		rows = append(rows, []any{
			r.Name, r.Jersey, string(r.Package),
			c(r.Base), c(r.Extras), c(r.Share), c(r.Sponsorship), c(r.Credit), c(r.FinalOwed),
			c(p.Paid), c(p.Outstanding), status,
		})
	}
	rows = append(rows, []any{}, []any{"Per player share", c(b.PerPlayerShare)})
	return rows
}
