// Package arguments turns the raw token list of one invocation into a structured Invocation.
//
// The grammar is deliberately small: long options (--name, --name=value), two-character
// short options (-x), and bare words that fill the command, the subcommand, and then the
// positional list. An option only takes the following token as its value when that token
// does not start with "-"; otherwise it is recorded as a boolean flag. Negative numbers can
// therefore only be passed with the --name=value form.
package arguments

import (
	"sort"
	"strings"
)

const (
	longOptionPrefix   = "--"
	shortOptionPrefix  = "-"
	optionValueDivider = "="
	shortOptionLength  = 2
)

// Invocation is the parsed form of one command line. It is immutable after Tokenize returns.
type Invocation struct {
	command    string
	subcommand string
	positional []string
	flags      map[string]bool
	options    map[string]string
}

// Tokenize classifies every token exactly once, left to right.
func Tokenize(tokens []string) Invocation {
	invocation := Invocation{
		flags:   make(map[string]bool),
		options: make(map[string]string),
	}

	for index := 0; index < len(tokens); index++ {
		token := tokens[index]
		switch {
		case strings.HasPrefix(token, longOptionPrefix):
			name := strings.TrimPrefix(token, longOptionPrefix)
			if optionName, optionValue, hasValue := strings.Cut(name, optionValueDivider); hasValue {
				invocation.options[optionName] = optionValue
				continue
			}
			if invocation.consumeValue(name, tokens, index) {
				index++
			}
		case strings.HasPrefix(token, shortOptionPrefix) && len(token) == shortOptionLength:
			if invocation.consumeValue(token[1:], tokens, index) {
				index++
			}
		default:
			invocation.addWord(token)
		}
	}

	return invocation
}

// consumeValue records name as an option when the next token can serve as its value and
// as a flag otherwise. It reports whether the next token was consumed.
func (invocation *Invocation) consumeValue(name string, tokens []string, index int) bool {
	nextIndex := index + 1
	if nextIndex < len(tokens) && !strings.HasPrefix(tokens[nextIndex], shortOptionPrefix) {
		invocation.options[name] = tokens[nextIndex]
		return true
	}
	invocation.flags[name] = true
	return false
}

func (invocation *Invocation) addWord(word string) {
	switch {
	case invocation.command == "":
		invocation.command = word
	case invocation.subcommand == "":
		invocation.subcommand = word
	default:
		invocation.positional = append(invocation.positional, word)
	}
}

// Command returns the first bare word, or the empty string.
func (invocation Invocation) Command() string {
	return invocation.command
}

// Subcommand returns the second bare word, or the empty string.
func (invocation Invocation) Subcommand() string {
	return invocation.subcommand
}

// Positional returns a copy of the bare words following the subcommand.
func (invocation Invocation) Positional() []string {
	return append([]string(nil), invocation.positional...)
}

// Arg returns the positional value at index, or the empty string when absent.
func (invocation Invocation) Arg(index int) string {
	if index < 0 || index >= len(invocation.positional) {
		return ""
	}
	return invocation.positional[index]
}

// Flag reports whether name was given as a boolean flag.
func (invocation Invocation) Flag(name string) bool {
	return invocation.flags[name]
}

// Option returns the value recorded for name.
func (invocation Invocation) Option(name string) (string, bool) {
	value, present := invocation.options[name]
	return value, present
}

// OptionValue returns the value of the first name that was supplied as an option.
// It allows long and short spellings of the same option to be read together.
func (invocation Invocation) OptionValue(names ...string) (string, bool) {
	for _, name := range names {
		if value, present := invocation.options[name]; present {
			return value, true
		}
	}
	return "", false
}

// Flags returns the sorted names of all boolean flags.
func (invocation Invocation) Flags() []string {
	return sortedKeys(invocation.flags)
}

// Options returns a copy of the valued options.
func (invocation Invocation) Options() map[string]string {
	copied := make(map[string]string, len(invocation.options))
	for name, value := range invocation.options {
		copied[name] = value
	}
	return copied
}

// WithSubcommandAsPositional returns a copy in which the subcommand, if any, becomes the
// first positional value. Dispatch uses it when a single-handler command received a
// second bare word that is really data.
func (invocation Invocation) WithSubcommandAsPositional() Invocation {
	if invocation.subcommand == "" {
		return invocation
	}
	folded := invocation
	folded.positional = append([]string{invocation.subcommand}, invocation.positional...)
	folded.subcommand = ""
	return folded
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
