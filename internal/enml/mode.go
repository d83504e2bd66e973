package enml

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how much markup survives normalization.
type Mode string

const (
	ModeRaw   Mode = "raw"   // leave all markup
	ModeBasic Mode = "basic" // clean structure, resolve media, unwrap en-note
	ModeStrip Mode = "strip" // plain text only
)

// ErrInvalidMode is returned for any mode outside raw, basic and strip.
var ErrInvalidMode = errors.New("invalid output mode")

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeRaw, ModeBasic, ModeStrip:
		return true
	}
	return false
}

// ParseMode converts user input such as "Basic" or " strip " into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}
