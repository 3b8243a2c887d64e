package models

import "strings"

type PrinterType string

const (
	PrinterEpson PrinterType = "epson"
	PrinterStar  PrinterType = "star"
)

const (
	DefaultPrinterWidth   = 48
	DefaultPrinterTimeout = 3000
	DefaultCharacterSet   = "PC437_USA"
	DefaultLineCharacter  = "-"
)

// PrinterConfig selects and formats for a thermal printer. Zero fields fall
// back to the service defaults.
type PrinterConfig struct {
	Type                    PrinterType `json:"type,omitempty"`
	Interface               string      `json:"interface,omitempty"`
	CharacterSet            string      `json:"characterSet,omitempty"`
	Width                   int         `json:"width,omitempty"`
	Timeout                 int         `json:"timeout,omitempty"`
	RemoveSpecialCharacters bool        `json:"removeSpecialCharacters,omitempty"`
	LineCharacter           string      `json:"lineCharacter,omitempty"`
	Cut                     *bool       `json:"cut,omitempty"`
	OpenCashDrawer          bool        `json:"openCashDrawer,omitempty"`
}

// WithDefaults returns a copy of c with empty fields taken from defaults and
// then from the built-in values.
func (c *PrinterConfig) WithDefaults(defaults PrinterConfig) PrinterConfig {
	var out PrinterConfig
	if c != nil {
		out = *c
	}

	out.Type = PrinterType(strings.ToLower(string(out.Type)))
	if out.Type == "" {
		out.Type = defaults.Type
	}
	if out.Type == "" {
		out.Type = PrinterEpson
	}
	if out.Interface == "" {
		out.Interface = defaults.Interface
	}
	if out.CharacterSet == "" {
		out.CharacterSet = defaults.CharacterSet
	}
	if out.CharacterSet == "" {
		out.CharacterSet = DefaultCharacterSet
	}
	if out.Width <= 0 {
		out.Width = defaults.Width
	}
	if out.Width <= 0 {
		out.Width = DefaultPrinterWidth
	}
	if out.Timeout <= 0 {
		out.Timeout = defaults.Timeout
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultPrinterTimeout
	}
	if out.LineCharacter == "" {
		out.LineCharacter = defaults.LineCharacter
	}
	if out.LineCharacter == "" {
		out.LineCharacter = DefaultLineCharacter
	}
	if out.Cut == nil {
		cut := true
		if defaults.Cut != nil {
			cut = *defaults.Cut
		}
		out.Cut = &cut
	}
	return out
}

// ShouldCut reports whether the paper is cut after printing.
func (c PrinterConfig) ShouldCut() bool {
	return c.Cut == nil || *c.Cut
}
