package arguments

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type invocationSnapshot struct {
	Command    string
	Subcommand string
	Positional []string
	Flags      []string
	Options    map[string]string
}

func snapshot(invocation Invocation) invocationSnapshot {
	return invocationSnapshot{
		Command:    invocation.Command(),
		Subcommand: invocation.Subcommand(),
		Positional: invocation.Positional(),
		Flags:      invocation.Flags(),
		Options:    invocation.Options(),
	}
}

func TestTokenizeClassifiesTokens(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		tokens   []string
		expected invocationSnapshot
	}{
		{
			name:     "empty",
			tokens:   nil,
			expected: invocationSnapshot{},
		},
		{
			name:   "command_subcommand_positional",
			tokens: []string{"message", "send", "task-1", "hello", "world"},
			expected: invocationSnapshot{
				Command:    "message",
				Subcommand: "send",
				Positional: []string{"task-1", "hello", "world"},
			},
		},
		{
			name:   "long_option_with_following_value",
			tokens: []string{"list", "--status", "open"},
			expected: invocationSnapshot{
				Command: "list",
				Options: map[string]string{"status": "open"},
			},
		},
		{
			name:   "long_option_with_equals_splits_once",
			tokens: []string{"list", "--filter=a=b"},
			expected: invocationSnapshot{
				Command: "list",
				Options: map[string]string{"filter": "a=b"},
			},
		},
		{
			name:   "trailing_long_option_is_flag",
			tokens: []string{"list", "--json"},
			expected: invocationSnapshot{
				Command: "list",
				Flags:   []string{"json"},
			},
		},
		{
			name:   "option_followed_by_option_is_flag",
			tokens: []string{"list", "--verbose", "--sort", "created"},
			expected: invocationSnapshot{
				Command: "list",
				Flags:   []string{"verbose"},
				Options: map[string]string{"sort": "created"},
			},
		},
		{
			name:   "short_option_with_value",
			tokens: []string{"create", "-d", "details", "title"},
			expected: invocationSnapshot{
				Command:    "create",
				Subcommand: "title",
				Options:    map[string]string{"d": "details"},
			},
		},
		{
			name:   "short_option_before_option_is_flag",
			tokens: []string{"-v", "--json"},
			expected: invocationSnapshot{
				Flags: []string{"json", "v"},
			},
		},
		{
			name:   "negative_value_is_not_consumed",
			tokens: []string{"list", "--limit", "-5"},
			expected: invocationSnapshot{
				Command: "list",
				Flags:   []string{"5", "limit"},
			},
		},
		{
			name:   "negative_value_with_equals",
			tokens: []string{"list", "--limit=-5"},
			expected: invocationSnapshot{
				Command: "list",
				Options: map[string]string{"limit": "-5"},
			},
		},
		{
			name:   "long_single_dash_token_is_a_word",
			tokens: []string{"show", "-abc"},
			expected: invocationSnapshot{
				Command:    "show",
				Subcommand: "-abc",
			},
		},
		{
			name:   "lone_dash_is_a_word",
			tokens: []string{"send", "-"},
			expected: invocationSnapshot{
				Command:    "send",
				Subcommand: "-",
			},
		},
		{
			name:   "options_interleaved_with_words",
			tokens: []string{"--org", "acme", "repo", "add", "--name", "api", "https://example.com/api.git"},
			expected: invocationSnapshot{
				Command:    "repo",
				Subcommand: "add",
				Positional: []string{"https://example.com/api.git"},
				Options:    map[string]string{"org": "acme", "name": "api"},
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := snapshot(Tokenize(testCase.tokens))
			if diff := cmp.Diff(testCase.expected, actual, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("unexpected invocation (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvocationAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	invocation := Tokenize([]string{"message", "send", "task-1", "--body", "hi"})

	positional := invocation.Positional()
	positional[0] = "mutated"
	if invocation.Arg(0) != "task-1" {
		t.Fatalf("positional slice leaked: %q", invocation.Arg(0))
	}

	options := invocation.Options()
	options["body"] = "mutated"
	if value, _ := invocation.Option("body"); value != "hi" {
		t.Fatalf("options map leaked: %q", value)
	}

	if invocation.Arg(5) != "" || invocation.Arg(-1) != "" {
		t.Fatalf("expected empty string for out-of-range arguments")
	}
}

func TestOptionValuePrefersFirstSuppliedName(t *testing.T) {
	t.Parallel()

	invocation := Tokenize([]string{"create", "-d", "short", "--description", "long"})
	value, present := invocation.OptionValue("description", "d")
	if !present || value != "long" {
		t.Fatalf("expected long spelling to win, got %q (present=%v)", value, present)
	}

	if _, present := invocation.OptionValue("title", "t"); present {
		t.Fatalf("expected missing option to be reported absent")
	}
}

func TestWithSubcommandAsPositional(t *testing.T) {
	t.Parallel()

	original := Tokenize([]string{"create", "write", "docs"})
	folded := original.WithSubcommandAsPositional()

	if folded.Subcommand() != "" {
		t.Fatalf("expected subcommand to be cleared, got %q", folded.Subcommand())
	}
	if diff := cmp.Diff([]string{"write", "docs"}, folded.Positional()); diff != "" {
		t.Fatalf("unexpected positional (-want +got):\n%s", diff)
	}
	if original.Subcommand() != "write" {
		t.Fatalf("original invocation changed: %q", original.Subcommand())
	}

	untouched := Tokenize([]string{"list"}).WithSubcommandAsPositional()
	if len(untouched.Positional()) != 0 {
		t.Fatalf("expected no positional values, got %v", untouched.Positional())
	}
}
