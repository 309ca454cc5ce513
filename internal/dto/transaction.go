package dto

import "github.com/shopspring/decimal"

type TransactionResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	AccountNumber   string          `json:"account_number"`
	TransactionType string          `json:"transaction_type"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description,omitempty"`
	ReferenceID     *string         `json:"reference_id,omitempty"`
	SourceMessageID *string         `json:"source_message_id,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

// BulkTransaction is a transaction built by a separate extraction service.
type BulkTransaction struct {
	UserID          string          `json:"user_id"`
	AccountNumber   string          `json:"account_number,omitempty"`
	TransactionType string          `json:"transaction_type"`
	Category        string          `json:"category,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency,omitempty"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description,omitempty"`
	ReferenceID     *string         `json:"reference_id,omitempty"`
	SourceMessageID *string         `json:"source_message_id,omitempty"`
}

type BulkCreateRequest struct {
	Transactions        []BulkTransaction `json:"transactions"`
	ProcessedMessageIDs []string          `json:"processed_message_ids"`
	// camelCase spelling sent by older extraction workers
	LegacyProcessedMessageIDs []string `json:"processedMessageIds,omitempty"`
}

func (r *BulkCreateRequest) MessageIDs() []string {
	return append(append([]string{}, r.ProcessedMessageIDs...), r.LegacyProcessedMessageIDs...)
}

type BulkCreateResponse struct {
	TransactionsCreated int `json:"transactions_created"`
	DuplicatesFiltered  int `json:"duplicates_filtered"`
	MessagesProcessed   int `json:"messages_processed"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}
