package render

// Labels are the fixed strings printed on a receipt.
type Labels struct {
	Receipt   string
	ReceiptNo string
	Date      string
	Customer  string
	Subtotal  string
	Total     string
	Payment   string
	Paid      string
	Change    string
	TaxID     string
	Notes     string
	ThankYou  string
}

var labelsByLocale = map[string]Labels{
	"en": {
		Receipt:   "RECEIPT",
		ReceiptNo: "Receipt No",
		Date:      "Date",
		Customer:  "Customer",
		Subtotal:  "Subtotal",
		Total:     "TOTAL",
		Payment:   "Payment",
		Paid:      "Paid",
		Change:    "Change",
		TaxID:     "Tax ID",
		Notes:     "Notes",
		ThankYou:  "Thank you for your purchase!",
	},
	"id": {
		Receipt:   "STRUK",
		ReceiptNo: "No. Struk",
		Date:      "Tanggal",
		Customer:  "Pelanggan",
		Subtotal:  "Subtotal",
		Total:     "TOTAL",
		Payment:   "Pembayaran",
		Paid:      "Dibayar",
		Change:    "Kembalian",
		TaxID:     "NPWP",
		Notes:     "Catatan",
		ThankYou:  "Terima kasih atas kunjungan Anda!",
	},
}

// LabelsFor returns the labels of locale, falling back to English.
func LabelsFor(locale string) Labels {
	if l, ok := labelsByLocale[locale]; ok {
		return l
	}
	return labelsByLocale["en"]
}

var dateLayouts = map[string]string{
	"en": "Jan 2, 2006 15:04",
	"id": "02/01/2006 15:04",
}

var paymentMethods = map[string]map[string]string{
	"en": {"cash": "Cash", "card": "Card", "qris": "QRIS", "transfer": "Bank Transfer", "ewallet": "E-Wallet"},
	"id": {"cash": "Tunai", "card": "Kartu", "qris": "QRIS", "transfer": "Transfer Bank", "ewallet": "Dompet Digital"},
}
