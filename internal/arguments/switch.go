package arguments

import (
	"errors"
	"fmt"
	"strings"
)

const switchAcceptedValuesListing = "true, false, yes, no, on, off, 1, 0"

// ErrInvalidSwitch is returned by Switch for values outside the accepted boolean literals.
var ErrInvalidSwitch = errors.New("invalid boolean value")

var switchLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// Switch reports whether a boolean switch is on. A bare --name is on; --name=value and
// --name value accept the literals in switchLiterals.
func (invocation Invocation) Switch(name string) (bool, error) {
	if invocation.flags[name] {
		return true, nil
	}
	value, present := invocation.options[name]
	if !present {
		return false, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return true, nil
	}
	enabled, known := switchLiterals[normalized]
	if !known {
		return false, fmt.Errorf("%w %q for --%s; accepted values: %s", ErrInvalidSwitch, value, name, switchAcceptedValuesListing)
	}
	return enabled, nil
}
