package models

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "USD"
	DefaultLocale   = "en"
)

// ReceiptData is the transaction snapshot every receipt format is rendered from.
// Renderers treat it as read-only.
type ReceiptData struct {
	ReceiptNumber   string          `json:"receiptNumber" validate:"required,max=64"`
	TransactionDate time.Time       `json:"transactionDate" validate:"required"`
	Business        Business        `json:"business"`
	Customer        *Customer       `json:"customer,omitempty"`
	Items           []LineItem      `json:"items" validate:"required,min=1,max=500,dive"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discounts       []Discount      `json:"discounts,omitempty" validate:"max=50,dive"`
	Taxes           []Tax           `json:"taxes,omitempty" validate:"max=20,dive"`
	Total           decimal.Decimal `json:"total"`
	Payment         Payment         `json:"payment"`
	Currency        string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Locale          string          `json:"locale,omitempty" validate:"omitempty,oneof=en id"`
	Notes           string          `json:"notes,omitempty" validate:"max=500"`
}

type Business struct {
	Name          string `json:"name" validate:"required,max=200"`
	Address       string `json:"address,omitempty" validate:"max=500"`
	Phone         string `json:"phone,omitempty" validate:"max=64"`
	Email         string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	TaxID         string `json:"taxId,omitempty" validate:"max=64"`
	LogoURL       string `json:"logoUrl,omitempty" validate:"omitempty,url,max=2048"`
	FooterMessage string `json:"footerMessage,omitempty" validate:"max=500"`
}

type Customer struct {
	Name  string `json:"name,omitempty" validate:"max=200"`
	Email string `json:"email,omitempty" validate:"max=254"`
	Phone string `json:"phone,omitempty" validate:"max=64"`
}

type LineItem struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
	Note      string          `json:"note,omitempty" validate:"max=500"`
}

type Discount struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Amount decimal.Decimal `json:"amount"`
}

type Tax struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type Payment struct {
	Method     string          `json:"method" validate:"required,max=64"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Change     decimal.Decimal `json:"change"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required fields and money invariants. The returned error
// lists every failing field by its JSON path.
func (r *ReceiptData) Validate() error {
	var problems []string

	if err := validate.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	checkNonNegative := func(path string, d decimal.Decimal) {
		if d.IsNegative() {
			problems = append(problems, path+" must not be negative")
		}
	}
	for i, it := range r.Items {
		checkNonNegative(fmt.Sprintf("items[%d].unitPrice", i), it.UnitPrice)
		checkNonNegative(fmt.Sprintf("items[%d].total", i), it.Total)
	}
	for i, d := range r.Discounts {
		checkNonNegative(fmt.Sprintf("discounts[%d].amount", i), d.Amount)
	}
	for i, t := range r.Taxes {
		checkNonNegative(fmt.Sprintf("taxes[%d].rate", i), t.Rate)
		checkNonNegative(fmt.Sprintf("taxes[%d].amount", i), t.Amount)
	}
	checkNonNegative("subtotal", r.Subtotal)
	checkNonNegative("total", r.Total)
	checkNonNegative("payment.amountPaid", r.Payment.AmountPaid)
	checkNonNegative("payment.change", r.Payment.Change)

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", path, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", path, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", path, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

// CurrencyCode returns the ISO currency code, defaulting to USD.
func (r *ReceiptData) CurrencyCode() string {
	if r.Currency == "" {
		return DefaultCurrency
	}
	return strings.ToUpper(r.Currency)
}

// LocaleCode returns the receipt locale, defaulting to en.
func (r *ReceiptData) LocaleCode() string {
	if r.Locale == "" {
		return DefaultLocale
	}
	return r.Locale
}

// FileBase is the download name without extension, e.g. "receipt-INV-0001".
// Characters that are unsafe in a Content-Disposition filename are replaced.
func (r *ReceiptData) FileBase() string {
	var b strings.Builder
	for _, ch := range r.ReceiptNumber {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_', ch == '.':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return "receipt-" + b.String()
}
