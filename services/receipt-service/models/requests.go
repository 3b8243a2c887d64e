package models

// ImageOptions controls the raster receipt. Type is png (default), jpeg or webp.
type ImageOptions struct {
	Type    string `json:"type,omitempty"`
	Width   int    `json:"width,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

// PDFOptions controls the PDF receipt. PaperWidth is in millimetres.
type PDFOptions struct {
	PaperWidth float64 `json:"paperWidth,omitempty"`
}

type RenderImageRequest struct {
	ReceiptData *ReceiptData  `json:"receiptData"`
	Options     *ImageOptions `json:"options,omitempty"`
}

type RenderPDFRequest struct {
	ReceiptData *ReceiptData `json:"receiptData"`
	Options     *PDFOptions  `json:"options,omitempty"`
}

type PrintThermalRequest struct {
	ReceiptData   *ReceiptData   `json:"receiptData"`
	PrinterConfig *PrinterConfig `json:"printerConfig,omitempty"`
}

type PrintThermalResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	JobID   string `json:"jobId,omitempty"`
}

// RenderedReceipt is a finished artifact ready to be sent as a download.
type RenderedReceipt struct {
	Body        []byte
	ContentType string
	Filename    string
	ArchiveKey  string
}

// ProxiedImage is an upstream image relayed by the image proxy.
type ProxiedImage struct {
	Body        []byte
	ContentType string
	Cached      bool
}
