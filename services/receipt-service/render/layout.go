// Package render turns ReceiptData into downloadable receipts (PDF and
// raster images). All formats, including the thermal printer output, share
// the line layout built here so the three outputs read the same.
package render

import (
	"fmt"
	"strings"

	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/shopspring/decimal"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type LineKind int

const (
	LineText LineKind = iota
	// LinePair puts Text on the left and Right flush right on the same row.
	LinePair
	LineRule
	LineBlank
)

// Line is one logical receipt row. Text may be wider than the medium; each
// renderer wraps it to its own width.
type Line struct {
	Kind  LineKind
	Text  string
	Right string
	Align Align
	Bold  bool
	Large bool
}

func text(s string, align Align) Line { return Line{Kind: LineText, Text: s, Align: align} }
func pair(l, r string) Line           { return Line{Kind: LinePair, Text: l, Right: r} }
func rule() Line                      { return Line{Kind: LineRule} }
func blank() Line                     { return Line{Kind: LineBlank} }

// BuildLayout produces the receipt rows for r. The result depends only on r.
func BuildLayout(r *models.ReceiptData) []Line {
	return BuildLayoutFor(r, nil)
}

// BuildLayoutFor is BuildLayout for a medium that cannot draw every currency
// symbol. When canShow rejects the receipt's symbol, amounts are written with
// the ISO code instead ("EUR 4,50").
func BuildLayoutFor(r *models.ReceiptData, canShow func(string) bool) []Line {
	locale := r.LocaleCode()
	currency := r.CurrencyCode()
	lb := LabelsFor(locale)

	cf := lookupCurrency(currency)
	if canShow != nil && !canShow(cf.symbol) {
		cf.symbol = currency
	}
	money := func(d decimal.Decimal) string { return formatMoney(d, cf, locale) }

	var lines []Line

	// header
	lines = append(lines, Line{Kind: LineText, Text: r.Business.Name, Align: AlignCenter, Bold: true, Large: true})
	for _, s := range []string{r.Business.Address, r.Business.Phone, r.Business.Email} {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, text(s, AlignCenter))
		}
	}
	if r.Business.TaxID != "" {
		lines = append(lines, text(lb.TaxID+": "+r.Business.TaxID, AlignCenter))
	}
	lines = append(lines, rule())

	// meta
	lines = append(lines,
		pair(lb.ReceiptNo, r.ReceiptNumber),
		pair(lb.Date, FormatDate(r, locale)),
	)
	if r.Customer != nil && strings.TrimSpace(r.Customer.Name) != "" {
		lines = append(lines, pair(lb.Customer, r.Customer.Name))
	}
	lines = append(lines, rule())

	// items
	for _, it := range r.Items {
		lines = append(lines, Line{Kind: LineText, Text: it.Name, Bold: true})
		lines = append(lines, pair(
			fmt.Sprintf("  %d x %s", it.Quantity, money(it.UnitPrice)),
			money(it.Total),
		))
		if note := strings.TrimSpace(it.Note); note != "" {
			lines = append(lines, text("  * "+note, AlignLeft))
		}
	}
	lines = append(lines, rule())

	// totals
	lines = append(lines, pair(lb.Subtotal, money(r.Subtotal)))
	for _, d := range r.Discounts {
		lines = append(lines, pair(d.Name, "-"+money(d.Amount)))
	}
	for _, t := range r.Taxes {
		label := t.Name
		if !t.Rate.IsZero() {
			label = fmt.Sprintf("%s (%s)", t.Name, FormatPercent(t.Rate))
		}
		lines = append(lines, pair(label, money(t.Amount)))
	}
	lines = append(lines, Line{Kind: LinePair, Text: lb.Total, Right: money(r.Total), Bold: true, Large: true})
	lines = append(lines, rule())

	// payment
	lines = append(lines, pair(lb.Payment, PaymentMethodName(r.Payment.Method, locale)))
	if !r.Payment.AmountPaid.IsZero() {
		lines = append(lines, pair(lb.Paid, money(r.Payment.AmountPaid)))
		lines = append(lines, pair(lb.Change, money(r.Payment.Change)))
	}

	if notes := strings.TrimSpace(r.Notes); notes != "" {
		lines = append(lines, blank(), text(lb.Notes+": "+notes, AlignLeft))
	}

	// footer
	footer := strings.TrimSpace(r.Business.FooterMessage)
	if footer == "" {
		footer = lb.ThankYou
	}
	lines = append(lines, blank())
	for _, s := range strings.Split(footer, "\n") {
		lines = append(lines, text(strings.TrimSpace(s), AlignCenter))
	}

	return lines
}

// FormatDate renders the transaction time in its own offset so output does
// not depend on the server's time zone.
func FormatDate(r *models.ReceiptData, locale string) string {
	layout, ok := dateLayouts[locale]
	if !ok {
		layout = dateLayouts["en"]
	}
	return r.TransactionDate.Format(layout)
}

// PaymentMethodName localizes well-known payment method codes.
func PaymentMethodName(method, locale string) string {
	names, ok := paymentMethods[locale]
	if !ok {
		names = paymentMethods["en"]
	}
	if n, ok := names[strings.ToLower(method)]; ok {
		return n
	}
	return method
}
