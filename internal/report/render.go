package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"teambudget/internal/core"
)

// WriteBudget renders the budget report as aligned plain text.
func WriteBudget(w io.Writer, b Budget) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...any) { fmt.Fprintf(tw, format, args...) }

	p("Team\t%s %s\n", b.Team.AgeGroup, b.Team.Season)
	p("\nORGANIZATION FEES\n")
	p("Player gear\t%s\n", FormatMoney(b.OrgFees.PlayerGear))
	p("Coach gear\t%s\n", FormatMoney(b.OrgFees.CoachGear))
	p("Extra games (%s)\t%s\n", humanize.Ftoa(b.OrgFees.ExtraGamesCount), FormatMoney(b.OrgFees.ExtraGames))
	p("Total\t%s\n", FormatMoney(b.OrgFees.Total))

	p("\nTEAM EXPENSES\n")
	for _, l := range b.TeamExpenses.Tournaments {
		p("%s\t%s\n", l.Label, FormatMoney(l.Amount))
	}
	for _, l := range b.TeamExpenses.Expenses {
		p("%s\t%s\n", l.Label, FormatMoney(l.Amount))
	}
	p("Organization fees\t%s\n", FormatMoney(b.TeamExpenses.OrgFees))
	p("Total team budget\t%s\n", FormatMoney(b.TeamExpenses.Total))

	if len(b.Sponsorships) > 0 {
		p("\nSPONSORSHIPS\n")
		for _, l := range b.Sponsorships {
			p("%s\t%s\n", l.Label, FormatMoney(l.Amount))
		}
		p("Total\t%s\n", FormatMoney(b.SponsorTotal))
	}

	p("\nPLAYERS\n")
	p("Name\t#\tPkg\tBase\tExtras\tShare\tSponsor\tCredit\tOwed\n")
	for _, r := range b.Players {
		p("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.Name, r.Jersey, r.Package,
			FormatMoney(r.Base), FormatMoney(r.Extras), FormatMoney(r.Share),
			FormatMoney(r.Sponsorship), FormatMoney(r.Credit), FormatMoney(r.FinalOwed))
	}
	p("Per player share\t%s\n", FormatMoney(b.PerPlayerShare))
	return tw.Flush()
}

// WriteLedger renders the ledger report as aligned plain text.
func WriteLedger(w io.Writer, l Ledger) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...any) { fmt.Fprintf(tw, format, args...) }

	p("CASH\n")
	p("Transaction income\t%s\n", FormatMoney(l.Cash.TransactionIncome))
	p("Team sponsorships\t%s\n", FormatMoney(l.Cash.TeamSponsorships))
	p("Player sponsorships\t%s\n", FormatMoney(l.Cash.PlayerSponsorships))
	p("Player credits\t%s\n", FormatMoney(l.Cash.PlayerCredits))
	p("Total income\t%s\n", FormatMoney(l.Cash.TotalIncome))
	p("Actual expenses\t%s\n", FormatMoney(l.Cash.ActualExpenses))
	p("Bank balance\t%s\n", FormatMoney(l.Cash.BankBalance))

	p("\nREFUND\n")
	p("Players\t%d\n", l.Refund.PlayerCount)
	p("Per player\t%s\n", FormatMoney(l.Refund.PerPlayer))

	p("\nORGANIZATION FEES\n")
	p("Paid\t%s of %s\n", FormatMoney(l.OrgFees.Paid), FormatMoney(l.OrgFees.Total))
	p("Remaining\t%s\n", FormatMoney(l.OrgFees.Remaining))

	p("\nPAYMENTS\n")
	p("Name\t#\tOwed\tPaid\tOutstanding\n")
	for _, r := range l.Payments {
		status := FormatMoney(r.Outstanding)
		if r.Settled {
			status = "PAID"
		}
		p("%s\t%s\t%s\t%s\t%s\n", r.Name, r.Jersey, FormatMoney(r.FinalOwed), FormatMoney(r.Paid), status)
	}

	p("\nHISTORY\n")
	p("Date\tType\tCategory\tDescription\tAmount\n")
	for _, h := range l.History {
		amount := FormatMoney(h.Amount.Float())
		if h.Type == core.Outflow {
			amount = "-" + amount
		}
		p("%s\t%s\t%s\t%s\t%s\n", h.Date, h.Type, h.Category, h.Description, amount)
	}
	return tw.Flush()
}
