package thermal

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// CodePage is a printer character table together with the numbers each
// dialect uses to select it.
type CodePage struct {
	Name     string
	Encoding encoding.Encoding
	Epson    byte
	Star     byte
}

// ErrInvalidConfig marks printer settings the service cannot honour.
var ErrInvalidConfig = errors.New("invalid printer config")

var codePages = map[string]CodePage{
	"PC437_USA":          {"PC437_USA", charmap.CodePage437, 0, 1},
	"PC850_MULTILINGUAL": {"PC850_MULTILINGUAL", charmap.CodePage850, 2, 4},
	"PC852_LATIN2":       {"PC852_LATIN2", charmap.CodePage852, 18, 5},
	"PC858_EURO":         {"PC858_EURO", charmap.CodePage858, 19, 4},
	"PC866_CYRILLIC2":    {"PC866_CYRILLIC2", charmap.CodePage866, 17, 10},
	"WPC1252":            {"WPC1252", charmap.Windows1252, 16, 32},
}

// LookupCodePage resolves a character set name, case-insensitively.
func LookupCodePage(name string) (CodePage, error) {
	cp, ok := codePages[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return CodePage{}, fmt.Errorf("%w: unsupported character set %q", ErrInvalidConfig, name)
	}
	return cp, nil
}

// Encode converts s to the code page. Characters the table lacks become the
// table's replacement byte.
func (c CodePage) Encode(s string) ([]byte, error) {
	return encoding.ReplaceUnsupported(c.Encoding.NewEncoder()).Bytes([]byte(s))
}

// CanEncode reports whether every character of s exists in the code page.
func (c CodePage) CanEncode(s string) bool {
	_, err := c.Encoding.NewEncoder().String(s)
	return err == nil
}
