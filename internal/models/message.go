package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageStatusReceived MessageStatus = "received"
	MessageStatusSent     MessageStatus = "sent"
)

func (s MessageStatus) Valid() bool {
	return s == MessageStatusReceived || s == MessageStatusSent
}

// MessageCategory is the label assigned by the classifier.
type MessageCategory string

const (
	MessageCategoryTransaction    MessageCategory = "transaction"
	MessageCategoryOTP            MessageCategory = "otp"
	MessageCategorySecurityAlert  MessageCategory = "security_alert"
	MessageCategoryTelecom        MessageCategory = "telecom"
	MessageCategoryBalanceInquiry MessageCategory = "balance_inquiry"
	MessageCategoryPromotional    MessageCategory = "promotional"
	MessageCategoryOther          MessageCategory = "other"
)

// Message is a raw SMS. Processed flips once and never back.
type Message struct {
	ID         uuid.UUID        `db:"id"`
	UserID     uuid.UUID        `db:"user_id"`
	Sender     string           `db:"sender"`
	Body       string           `db:"message_body"`
	Status     MessageStatus    `db:"status"`
	ReceivedAt time.Time        `db:"received_at"`
	Processed  bool             `db:"processed"`
	Category   *MessageCategory `db:"category"`
	CreatedAt  time.Time        `db:"created_at"`
}

// MessageKey identifies a message for duplicate detection within a user.
type MessageKey struct {
	Sender string
	Body   string
}

func (m *Message) Key() MessageKey {
	return MessageKey{Sender: m.Sender, Body: m.Body}
}
