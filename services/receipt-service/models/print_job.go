package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PrintJobStatusPrinted = "printed"
	PrintJobStatusFailed  = "failed"
)

// PrintJob records one thermal dispatch attempt.
type PrintJob struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReceiptNumber string    `gorm:"type:varchar(64);not null;index" json:"receiptNumber"`
	PrinterType   string    `gorm:"type:varchar(16);not null" json:"printerType"`
	Interface     string    `gorm:"type:varchar(512);not null" json:"interface"`
	CharacterSet  string    `gorm:"type:varchar(32)" json:"characterSet"`
	Status        string    `gorm:"type:varchar(16);not null;index" json:"status"`
	Error         string    `gorm:"type:text" json:"error,omitempty"`
	BytesSent     int       `json:"bytesSent"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// ReceiptPrintedEvent is published to SNS after a successful print.
type ReceiptPrintedEvent struct {
	EventType     string    `json:"event_type"`
	JobID         string    `json:"job_id"`
	ReceiptNumber string    `json:"receipt_number"`
	PrinterType   string    `json:"printer_type"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}

const ReceiptPrintedEventType = "receipt.printed"
