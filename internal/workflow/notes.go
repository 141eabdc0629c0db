package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// noteLine formats one attributed entry for the append-only admin notes field.
func noteLine(actor, note string) string {
	return fmt.Sprintf("[%s] %s: %s", time.Now().UTC().Format("2006-01-02 15:04"), actor, note)
}

func appendNotes(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}

// pricingNotes encodes an old->new amount change for the ledger. Pricing
// changes keep the current status; the ledger row is how the change stays
// auditable.
func pricingNotes(label string, old, new *decimal.Decimal, currency, reason string) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" updated: ")
	b.WriteString(amountString(old, currency))
	b.WriteString(" -> ")
	b.WriteString(amountString(new, currency))
	if reason != "" {
		b.WriteString("; reason: ")
		b.WriteString(reason)
	}
	return b.String()
}

func amountString(amount *decimal.Decimal, currency string) string {
	if amount == nil {
		return "unset"
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}
