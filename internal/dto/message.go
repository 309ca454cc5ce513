package dto

// IngestMessage is one SMS as forwarded by the device. ReceivedAt accepts
// RFC 3339, "2006-01-02 15:04:05" or unix milliseconds.
type IngestMessage struct {
	Sender      string `json:"sender"`
	MessageBody string `json:"message_body"`
	Status      string `json:"status,omitempty"`
	ReceivedAt  string `json:"received_at,omitempty"`
}

// IngestRequest carries either a Messages batch or a single message in the
// inline Sender/MessageBody fields.
type IngestRequest struct {
	UserID   string          `json:"user_id"`
	Messages []IngestMessage `json:"messages"`

	Sender      string `json:"sender,omitempty"`
	MessageBody string `json:"message_body,omitempty"`
	Status      string `json:"status,omitempty"`
	ReceivedAt  string `json:"received_at,omitempty"`
}

const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

type IngestProgressEvent struct {
	Type      string `json:"type"`
	Inserted  int    `json:"inserted"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

type IngestCompleteEvent struct {
	Type          string `json:"type"`
	InsertedCount int    `json:"inserted_count"`
	Duplicates    int    `json:"duplicates"`
	Skipped       int    `json:"skipped"`
	Total         int    `json:"total"`
}

type IngestErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type ProcessRequest struct {
	Limit  *int   `json:"limit,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type ProcessResponse struct {
	Processed           int            `json:"processed"`
	TransactionsCreated int            `json:"transactions_created"`
	DuplicatesFiltered  int            `json:"duplicates_filtered"`
	Categories          map[string]int `json:"categories,omitempty"`
}

type ProcessingStatus struct {
	Total       int64 `json:"total"`
	Processed   int64 `json:"processed"`
	Unprocessed int64 `json:"unprocessed"`
	Percentage  int   `json:"percentage"`
}

type MessageResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Sender      string  `json:"sender"`
	MessageBody string  `json:"message_body"`
	Status      string  `json:"status"`
	ReceivedAt  string  `json:"received_at"`
	Processed   bool    `json:"processed"`
	Category    *string `json:"category,omitempty"`
}

type UnprocessedResponse struct {
	Messages []MessageResponse `json:"messages"`
	Count    int               `json:"count"`
}
