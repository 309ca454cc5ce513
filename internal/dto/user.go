package dto

import "github.com/shopspring/decimal"

const (
	BalanceSourceStored      = "stored"
	BalanceSourceRecovered   = "recovered"
	BalanceSourceUnavailable = "unavailable"
)

type BalanceResponse struct {
	UserID  string           `json:"user_id"`
	Balance *decimal.Decimal `json:"balance"`
	Source  string           `json:"source"`
}
