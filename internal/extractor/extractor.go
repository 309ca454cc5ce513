// Package extractor pulls structured transaction fields out of bank SMS text.
// A field that cannot be found is left nil; nothing here returns an error.
package extractor

import (
	"regexp"
	"strings"

	"money-mate/internal/models"

	"github.com/shopspring/decimal"
)

type Fields struct {
	Amount          *decimal.Decimal
	TransactionType *models.TransactionType
	AccountNumber   *string
	Balance         *decimal.Decimal
	ReferenceID     *string
}

// Usable reports whether the fields are enough to create a transaction.
func (f Fields) Usable() bool {
	return f.Amount != nil && f.TransactionType != nil
}

const moneyValue = `(\d[\d,]*(?:\.\d{1,2})?)`

var (
	amountPattern = regexp.MustCompile(`(?i)(?:\brs\.?|₹|\binr)\s*` + moneyValue)

	// Tried in order, first match wins.
	balancePatterns = []*regexp.Regexp{
		balanceRule(`avl\.?\s*bal(?:ance)?`),
		balanceRule(`avlbl\.?\s*amt`),
		balanceRule(`total\s*bal(?:ance)?`),
		balanceRule(`balance\s*:`),
		balanceRule(`avlbal\s*:`),
		balanceRule(`available\s+balance(?:\s+is)?`),
	}

	debitPattern  = regexp.MustCompile(`(?i)\b(?:debited|withdrawn|paid|sent|transferred|spent|purchased?)\b`)
	creditPattern = regexp.MustCompile(`(?i)\b(?:credited|received|deposited|refund(?:ed)?|reversed)\b`)

	// Longer digit runs are not account numbers.
	accountPattern = regexp.MustCompile(`(?i)\b(?:a/c|acct|account|card)(?:\s*(?:no\.?|number|ending(?:\s+with)?))?[\s:.-]*(?:[x*.]+\s*)?(\d{3,20})(?:\D|$)`)

	referencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bupi\s*ref(?:erence)?\.?\s*(?:no|number|id)?\.?[\s:#-]*([a-z0-9]*\d[a-z0-9]*)`),
		regexp.MustCompile(`(?i)\bref(?:erence)?\b\.?\s*(?:no|number|id)?\.?[\s:#-]*([a-z0-9]*\d[a-z0-9]*)`),
		regexp.MustCompile(`(?i)\butr\b\.?\s*(?:no\.?)?[\s:#-]*([a-z0-9]*\d[a-z0-9]*)`),
		regexp.MustCompile(`(?i)\btxn\s*(?:id|no|ref\s*no)\.?[\s:#-]*([a-z0-9]*\d[a-z0-9]*)`),
		regexp.MustCompile(`(?i)\bupi[/:]\s*(\d{6,})`),
	}
)

func balanceRule(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + label + `[\s:.-]*(?:is\s*)?(?:rs\.?|₹|inr)?\s*` + moneyValue)
}

// Extract derives every field it can find in text.
func Extract(text string) Fields {
	var f Fields

	balance, balanceSpan := findBalance(text)
	f.Balance = balance
	f.Amount = findAmount(text, balanceSpan)
	f.TransactionType = findType(text)
	f.AccountNumber = findFirst(text, accountPattern)
	for _, p := range referencePatterns {
		if ref := findFirst(text, p); ref != nil && len(*ref) <= models.MaxReferenceIDLength {
			f.ReferenceID = ref
			break
		}
	}

	return f
}

// ExtractBalance returns the account balance quoted in text, if any.
func ExtractBalance(text string) *decimal.Decimal {
	balance, _ := findBalance(text)
	return balance
}

func findBalance(text string) (*decimal.Decimal, []int) {
	for _, p := range balancePatterns {
		loc := p.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if value := parseMoney(text[loc[2]:loc[3]]); value != nil {
			return value, loc[:2]
		}
	}
	return nil, nil
}

// findAmount returns the first currency amount outside the balance clause.
func findAmount(text string, balanceSpan []int) *decimal.Decimal {
	for _, loc := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		if balanceSpan != nil && loc[0] >= balanceSpan[0] && loc[1] <= balanceSpan[1] {
			continue
		}
		if value := parseMoney(text[loc[2]:loc[3]]); value != nil {
			return value
		}
	}
	return nil
}

// findType picks the direction of whichever action verb appears first.
func findType(text string) *models.TransactionType {
	debit := debitPattern.FindStringIndex(text)
	credit := creditPattern.FindStringIndex(text)

	var t models.TransactionType
	switch {
	case debit == nil && credit == nil:
		return nil
	case credit == nil || (debit != nil && debit[0] < credit[0]):
		t = models.TransactionTypeDebit
	default:
		t = models.TransactionTypeCredit
	}
	return &t
}

func findFirst(text string, p *regexp.Regexp) *string {
	m := p.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return nil
	}
	value := m[1]
	return &value
}

// parseMoney returns nil for zero, unparsable or unstorable values.
func parseMoney(raw string) *decimal.Decimal {
	raw = strings.TrimRight(strings.ReplaceAll(raw, ",", ""), ".")
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	value = value.Round(2)
	if !value.IsPositive() || value.GreaterThanOrEqual(models.MaxAmount) {
		return nil
	}
	return &value
}
