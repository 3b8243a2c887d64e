package thermal

import (
	"fmt"

	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/render"
)

const (
	esc = 0x1b
	gs  = 0x1d
	bel = 0x07
)

// Dialect emits the control sequences of one printer command language.
type Dialect interface {
	Init() []byte
	CodePage(cp CodePage) []byte
	Align(a render.Align) []byte
	Bold(on bool) []byte
	Large(on bool) []byte
	Feed(lines byte) []byte
	Cut() []byte
	OpenDrawer() []byte
}

// DialectFor returns the command set of a printer type.
func DialectFor(t models.PrinterType) (Dialect, error) {
	switch t {
	case models.PrinterEpson, "":
		return epson{}, nil
	case models.PrinterStar:
		return star{}, nil
	}
	return nil, fmt.Errorf("%w: unsupported printer type %q", ErrInvalidConfig, t)
}

// epson is ESC/POS.
type epson struct{}

func (epson) Init() []byte                { return []byte{esc, '@'} }
func (epson) CodePage(cp CodePage) []byte { return []byte{esc, 't', cp.Epson} }
func (epson) Align(a render.Align) []byte { return []byte{esc, 'a', alignByte(a)} }
func (epson) Bold(on bool) []byte         { return []byte{esc, 'E', boolByte(on)} }
func (epson) Feed(n byte) []byte          { return []byte{esc, 'd', n} }
func (epson) Cut() []byte                 { return []byte{gs, 'V', 0x41, 0x03} }
func (epson) OpenDrawer() []byte          { return []byte{esc, 'p', 0x00, 0x19, 0xfa} }

func (epson) Large(on bool) []byte {
	if on {
		return []byte{gs, '!', 0x11}
	}
	return []byte{gs, '!', 0x00}
}

// star is Star line mode.
type star struct{}

func (star) Init() []byte                { return []byte{esc, '@'} }
func (star) CodePage(cp CodePage) []byte { return []byte{esc, gs, 't', cp.Star} }
func (star) Align(a render.Align) []byte { return []byte{esc, gs, 'a', alignByte(a)} }
func (star) Feed(n byte) []byte          { return []byte{esc, 'a', n} }
func (star) Cut() []byte                 { return []byte{esc, 'd', 0x02} }
func (star) OpenDrawer() []byte          { return []byte{bel} }

func (star) Bold(on bool) []byte {
	if on {
		return []byte{esc, 'E'}
	}
	return []byte{esc, 'F'}
}

func (star) Large(on bool) []byte {
	n := boolByte(on)
	return []byte{esc, 'i', n, n}
}

func alignByte(a render.Align) byte {
	switch a {
	case render.AlignCenter:
		return 1
	case render.AlignRight:
		return 2
	}
	return 0
}

func boolByte(on bool) byte {
	if on {
		return 1
	}
	return 0
}
