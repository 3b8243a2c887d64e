// Package thermal composes receipts into ESC/POS or Star line-mode command
// streams and sends them to a printer.
package thermal

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/render"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Compose renders r into the byte stream for a printer configured by cfg.
// cfg must already carry defaults. The output depends only on r and cfg.
func Compose(r *models.ReceiptData, cfg models.PrinterConfig) ([]byte, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	cp, err := LookupCodePage(cfg.CharacterSet)
	if err != nil {
		return nil, err
	}
	if cfg.Width < 16 {
		return nil, fmt.Errorf("%w: printer width %d is too narrow", ErrInvalidConfig, cfg.Width)
	}

	e := &encoder{
		buf:     &bytes.Buffer{},
		dialect: dialect,
		cp:      cp,
		width:   cfg.Width,
		rule:    ruleChar(cfg.LineCharacter),
		strip:   cfg.RemoveSpecialCharacters,
	}

	e.raw(dialect.Init())
	e.raw(dialect.CodePage(cp))
	for _, ln := range render.BuildLayoutFor(r, cp.CanEncode) {
		if err := e.line(ln); err != nil {
			return nil, err
		}
	}
	e.raw(dialect.Align(render.AlignLeft))
	e.raw(dialect.Feed(4))
	if cfg.ShouldCut() {
		e.raw(dialect.Cut())
	}
	if cfg.OpenCashDrawer {
		e.raw(dialect.OpenDrawer())
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf     *bytes.Buffer
	dialect Dialect
	cp      CodePage
	width   int
	rule    string
	strip   bool
}

func (e *encoder) raw(b []byte) { e.buf.Write(b) }

func (e *encoder) line(ln render.Line) error {
	switch ln.Kind {
	case render.LineRule:
		e.raw(e.dialect.Align(render.AlignLeft))
		return e.text(strings.Repeat(e.rule, e.width))
	case render.LineBlank:
		return e.text("")
	}

	// double-size text takes two columns per character
	cols := e.width
	if ln.Large {
		cols = e.width / 2
	}

	e.raw(e.dialect.Align(ln.Align))
	if ln.Bold {
		e.raw(e.dialect.Bold(true))
	}
	if ln.Large {
		e.raw(e.dialect.Large(true))
	}

	var rows []string
	if ln.Kind == render.LinePair {
		rows = padPair(e.clean(ln.Text), e.clean(ln.Right), cols)
	} else {
		rows = render.WrapText(e.clean(ln.Text), float64(cols), render.RuneWidth)
	}
	for _, row := range rows {
		if err := e.text(row); err != nil {
			return err
		}
	}

	if ln.Large {
		e.raw(e.dialect.Large(false))
	}
	if ln.Bold {
		e.raw(e.dialect.Bold(false))
	}
	return nil
}

func (e *encoder) text(s string) error {
	b, err := e.cp.Encode(s)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.cp.Name, err)
	}
	e.buf.Write(b)
	e.buf.WriteByte('\n')
	return nil
}

func (e *encoder) clean(s string) string {
	s = RemoveControl(s)
	if !e.strip {
		return s
	}
	return RemoveDiacritics(s)
}

// padPair puts left and right on one row of cols characters, wrapping left
// when both do not fit.
func padPair(left, right string, cols int) []string {
	rw := int(render.RuneWidth(right))
	if rw >= cols-1 {
		return append(render.WrapText(left, float64(cols), render.RuneWidth), right)
	}
	leftRows := render.WrapText(left, float64(cols-rw-1), render.RuneWidth)
	first := leftRows[0]
	gap := cols - int(render.RuneWidth(first)) - rw
	leftRows[0] = first + strings.Repeat(" ", gap) + right
	return leftRows
}

func ruleChar(s string) string {
	for _, r := range s {
		return string(r)
	}
	return models.DefaultLineCharacter
}

func controlToSpace(r rune) rune {
	if unicode.IsControl(r) {
		return ' '
	}
	return r
}

// RemoveControl replaces control characters with spaces so receipt text can
// never be read by the printer as a command (ESC, GS, BEL, DLE and so on).
func RemoveControl(s string) string {
	out, _, err := transform.String(runes.Map(controlToSpace), s)
	if err != nil {
		return strings.Map(controlToSpace, s)
	}
	return out
}

// RemoveDiacritics folds accented letters to their base letter ("Café" ->
// "Cafe"). Characters without a decomposition are kept.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
