package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReceipt() ReceiptData {
	return ReceiptData{
		ReceiptNumber:   "INV-0001",
		TransactionDate: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Business:        Business{Name: "Kopi Kita"},
		Items: []LineItem{
			{Name: "Latte", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50"), Total: decimal.RequireFromString("7.00")},
		},
		Subtotal: decimal.RequireFromString("7.00"),
		Taxes:    []Tax{{Name: "VAT", Rate: decimal.NewFromInt(10), Amount: decimal.RequireFromString("0.70")}},
		Total:    decimal.RequireFromString("7.70"),
		Payment:  Payment{Method: "cash", AmountPaid: decimal.NewFromInt(10), Change: decimal.RequireFromString("2.30")},
	}
}

func TestValidate_OK(t *testing.T) {
	r := validReceipt()
	assert.NoError(t, r.Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	r := validReceipt()
	r.ReceiptNumber = ""
	r.Business.Name = ""
	r.Items = nil
	r.Payment.Method = ""

	err := r.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "receiptNumber is required")
	assert.Contains(t, msg, "business.name is required")
	assert.Contains(t, msg, "items is required")
	assert.Contains(t, msg, "payment.method is required")
}

func TestValidate_ItemRules(t *testing.T) {
	r := validReceipt()
	r.Items[0].Quantity = 0
	r.Items[0].Total = decimal.NewFromInt(-1)
	r.Locale = "fr"

	msg := r.Validate().Error()
	assert.Contains(t, msg, "items[0].quantity must be greater than 0")
	assert.Contains(t, msg, "items[0].total must not be negative")
	assert.Contains(t, msg, "locale must be one of")
}

func TestReceiptData_JSONAcceptsNumbersAndStrings(t *testing.T) {
	raw := `{
		"receiptNumber": "R-9",
		"transactionDate": "2024-05-01T10:00:00+07:00",
		"business": {"name": "Warung"},
		"items": [{"name": "Nasi", "quantity": 1, "unitPrice": 15000, "total": "15000"}],
		"subtotal": 15000, "total": 15000,
		"payment": {"method": "qris"},
		"currency": "idr", "locale": "id"
	}`
	var r ReceiptData
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.NoError(t, r.Validate())
	assert.Equal(t, "IDR", r.CurrencyCode())
	assert.Equal(t, "id", r.LocaleCode())
	assert.True(t, r.Items[0].Total.Equal(decimal.NewFromInt(15000)))
}

func TestDefaults(t *testing.T) {
	r := ReceiptData{}
	assert.Equal(t, "USD", r.CurrencyCode())
	assert.Equal(t, "en", r.LocaleCode())
}

func TestFileBase_Sanitized(t *testing.T) {
	r := ReceiptData{ReceiptNumber: `INV/2024 "01"`}
	assert.Equal(t, "receipt-INV_2024__01_", r.FileBase())
}

func TestPrinterConfig_WithDefaults(t *testing.T) {
	var nilCfg *PrinterConfig
	cfg := nilCfg.WithDefaults(PrinterConfig{Interface: "tcp://10.0.0.5:9100"})
	assert.Equal(t, PrinterEpson, cfg.Type)
	assert.Equal(t, "tcp://10.0.0.5:9100", cfg.Interface)
	assert.Equal(t, DefaultCharacterSet, cfg.CharacterSet)
	assert.Equal(t, 48, cfg.Width)
	assert.Equal(t, 3000, cfg.Timeout)
	assert.Equal(t, "-", cfg.LineCharacter)
	assert.True(t, cfg.ShouldCut())

	noCut := false
	custom := &PrinterConfig{Type: "STAR", Width: 32, Cut: &noCut, LineCharacter: "="}
	cfg = custom.WithDefaults(PrinterConfig{})
	assert.Equal(t, PrinterStar, cfg.Type)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, "=", cfg.LineCharacter)
	assert.False(t, cfg.ShouldCut())
}

func TestValidate_SizeLimits(t *testing.T) {
	r := validReceipt()
	r.Items[0].Note = strings.Repeat("n", 501)
	r.Business.FooterMessage = strings.Repeat("f", 501)
	r.Customer = &Customer{Name: strings.Repeat("c", 201)}

	msg := r.Validate().Error()
	assert.Contains(t, msg, "items[0].note must be at most 500 characters")
	assert.Contains(t, msg, "business.footerMessage must be at most 500 characters")
	assert.Contains(t, msg, "customer.name must be at most 200 characters")

	r = validReceipt()
	for len(r.Items) <= 500 {
		r.Items = append(r.Items, r.Items[0])
	}
	assert.Contains(t, r.Validate().Error(), "items must have at most 500 entries")

	r = validReceipt()
	r.Items[0].Note = strings.Repeat("é", 500)
	assert.NoError(t, r.Validate())
}
