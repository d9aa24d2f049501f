package config

import (
	"strings"
)

var (
	switchTrue  = map[string]struct{}{"true": {}, "1": {}, "yes": {}, "on": {}}
	switchFalse = map[string]struct{}{"false": {}, "0": {}, "no": {}, "off": {}}
)

// Switch is a boolean task input. Absent or unrecognized values read as
// false, the way an unset switch parameter behaves.
type Switch bool

// ParseSwitch interprets raw as a switch value. Matching is case-insensitive
// and ignores surrounding whitespace. ok is false for unrecognized values.
func ParseSwitch(raw string) (value bool, ok bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if _, found := switchTrue[normalized]; found {
		return true, true
	}
	if _, found := switchFalse[normalized]; found {
		return false, true
	}
	return false, false
}

// UnmarshalText implements encoding.TextUnmarshaler for env and TOML decoding.
func (s *Switch) UnmarshalText(text []byte) error {
	value, _ := ParseSwitch(string(text))
	*s = Switch(value)
	return nil
}

// Bool returns the switch as a plain bool.
func (s Switch) Bool() bool { return bool(s) }
