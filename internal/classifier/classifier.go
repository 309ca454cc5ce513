// Package classifier tags raw SMS text with a message category.
package classifier

import (
	"regexp"
	"strings"

	"money-mate/internal/models"
)

// rule matches when every one of its groups finds at least one keyword.
type rule struct {
	name     string
	category models.MessageCategory
	groups   []*regexp.Regexp
}

func (r rule) matches(text string) bool {
	for _, g := range r.groups {
		if !g.MatchString(text) {
			return false
		}
	}
	return true
}

// words builds a case-insensitive alternation where each keyword must stand
// on word boundaries. Keywords are regex fragments.
func words(keywords ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(keywords, "|") + `)\b`)
}

var (
	securityKeywords = words(
		`never share`, `do not share`, `don'?t share`, `cooling period`, `security alert`,
		`upi pin`, `cvv`, `fraud\w*`, `suspicious`, `block(?:ed)?`, `disabled?`,
	)

	otpKeywords = words(`otp`, `verification code`, `verify`, `one time password`)
	otpDigits   = regexp.MustCompile(`\b\d{4,6}\b`)

	telecomKeywords = words(
		`data`, `(?:\d+(?:\.\d+)?\s*)?gb`, `(?:\d+(?:\.\d+)?\s*)?mb`, `plan`, `validity`, `recharge`,
		`balance`, `jio`, `airtel`, `vi`, `bsnl`, `vodafone`, `talktime`, `sms`,
	)
	telecomContext = words(`usage`, `expires?`, `validity`, `pack`, `unlimited`)

	balanceKeywords = words(`balance`, `available balance`, `current balance`)
	inquiryKeywords = words(`enquiry`, `inquiry`, `check`, `statement`)

	promoKeywords = words(
		`offers?`, `discounts?`, `sale`, `cashback`, `rewards?`, `gifts?`,
		`limited time`, `hurry`, `click here`, `visit`, `download`,
	)

	txnActions = words(
		`credited`, `debited`, `transferred`, `paid`, `withdrawn`, `received`,
		`deposited`, `refund(?:ed)?`, `purchased?`, `sent`, `spent`,
	)
	// bank also matches inside sender-style words such as HDFCBANK or netbanking.
	txnContext = words(`accounts?`, `a/c`, `acct`, `upi`, `neft`, `rtgs`, `imps`, `\w*bank\w*`, `atm`, `cards?`)
	txnAmount  = regexp.MustCompile(`(?i)(?:\brs\.?|₹|\binr)\s*\d`)
)

// rules are evaluated in order; the first match wins. Security and OTP come
// before transaction so that a fraud warning quoting an amount stays a warning.
var rules = []rule{
	{name: "security alert", category: models.MessageCategorySecurityAlert, groups: []*regexp.Regexp{securityKeywords}},
	{name: "otp", category: models.MessageCategoryOTP, groups: []*regexp.Regexp{otpKeywords, otpDigits}},
	{name: "telecom", category: models.MessageCategoryTelecom, groups: []*regexp.Regexp{telecomKeywords, telecomContext}},
	{name: "balance inquiry", category: models.MessageCategoryBalanceInquiry, groups: []*regexp.Regexp{balanceKeywords, inquiryKeywords}},
	{name: "promotional", category: models.MessageCategoryPromotional, groups: []*regexp.Regexp{promoKeywords}},
	{name: "transaction", category: models.MessageCategoryTransaction, groups: []*regexp.Regexp{txnActions, txnContext, txnAmount}},
}

// Classify returns the category of an SMS body. It is pure and safe for
// concurrent use.
func Classify(text string) models.MessageCategory {
	for _, r := range rules {
		if r.matches(text) {
			return r.category
		}
	}
	return models.MessageCategoryOther
}

// Rules returns the rule names in evaluation order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}
