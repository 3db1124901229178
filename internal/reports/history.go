package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
)

// Transaction type labels as they appear in exports.
const (
	TypeRentalPayment = "Rental Payment"
	TypeCredit        = "Credit"
)

// TransactionRow is one line of the merged payment/credit history.
type TransactionRow struct {
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	Notes       string          `json:"notes"`
}

// BuildTransactionHistory merges payments and credits into one list sorted
// newest-first. The running balance accumulates in that same descending
// display order, so the top row carries the newest amount and the bottom row
// the grand total. That ordering is a deliberate carry-over from the books
// this system replaces; consumers expecting a chronological running balance
// must re-sort.
func BuildTransactionHistory(payments []models.Payment, credits []models.Credit) []TransactionRow {
	rows := make([]TransactionRow, 0, len(payments)+len(credits))
	for _, payment := range payments {
		description := fmt.Sprintf("Payment - %s", payment.Method)
		if payment.ReceiptNumber != "" {
			description = fmt.Sprintf("Payment - %s (%s)", payment.Method, payment.ReceiptNumber)
		}
		rows = append(rows, TransactionRow{
			Date:        payment.CreatedAt,
			Type:        TypeRentalPayment,
			Description: description,
			Amount:      payment.Amount,
			Notes:       stringOrEmpty(payment.Notes),
		})
	}
	for _, credit := range credits {
		reason := credit.Reason
		if reason == "" {
			reason = "Adjustment"
		}
		rows = append(rows, TransactionRow{
			Date:        credit.CreatedAt,
			Type:        TypeCredit,
			Description: fmt.Sprintf("Credit - %s", reason),
			Amount:      credit.Amount,
			Notes:       stringOrEmpty(credit.Notes),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	running := decimal.Zero
	for i := range rows {
		running = running.Add(rows[i].Amount)
		rows[i].Balance = running
	}
	return rows
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
