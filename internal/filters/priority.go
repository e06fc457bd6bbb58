package filters

import (
	"net/url"
	"regexp"
	"strconv"
)

// Priority bounds accepted by the service.
const (
	MinimumPriority = 1
	MaximumPriority = 10
)

// Query parameter names produced by a PrioritySpec.
const (
	PriorityParameter    = "priority"
	MinPriorityParameter = "min_priority"
	MaxPriorityParameter = "max_priority"
)

const priorityFormatDetail = "use N, N+, or N-M with values from 1 to 10"

// PrioritySpec is one of four mutually exclusive shapes: empty, exact, open minimum,
// or closed range. Zero fields are unset.
type PrioritySpec struct {
	Exact   int
	Minimum int
	Maximum int
}

// Apply writes the priority query parameters into values.
func (spec PrioritySpec) Apply(values url.Values) {
	if spec.Exact != 0 {
		values.Set(PriorityParameter, strconv.Itoa(spec.Exact))
	}
	if spec.Minimum != 0 {
		values.Set(MinPriorityParameter, strconv.Itoa(spec.Minimum))
	}
	if spec.Maximum != 0 {
		values.Set(MaxPriorityParameter, strconv.Itoa(spec.Maximum))
	}
}

type priorityRule struct {
	pattern *regexp.Regexp
	build   func(input string, match []string) (PrioritySpec, error)
}

var priorityRules = []priorityRule{
	{pattern: regexp.MustCompile(`^(\d+)$`), build: exactPriority},
	{pattern: regexp.MustCompile(`^(\d+)\+$`), build: minimumPriority},
	{pattern: regexp.MustCompile(`^(\d+)-(\d+)$`), build: priorityRange},
}

// ParsePriority validates a priority expression. Empty input yields an empty spec.
func ParsePriority(input string) (PrioritySpec, error) {
	if input == "" {
		return PrioritySpec{}, nil
	}
	for _, rule := range priorityRules {
		if match := rule.pattern.FindStringSubmatch(input); match != nil {
			return rule.build(input, match)
		}
	}
	return PrioritySpec{}, newFormatError(ErrInvalidPriority, input, priorityFormatDetail)
}

func exactPriority(input string, match []string) (PrioritySpec, error) {
	value, inRange := priorityValue(match[1])
	if !inRange {
		return PrioritySpec{}, newFormatError(ErrInvalidPriority, input, priorityFormatDetail)
	}
	return PrioritySpec{Exact: value}, nil
}

func minimumPriority(input string, match []string) (PrioritySpec, error) {
	value, inRange := priorityValue(match[1])
	if !inRange {
		return PrioritySpec{}, newFormatError(ErrPriorityRange, input, "")
	}
	return PrioritySpec{Minimum: value}, nil
}

func priorityRange(input string, match []string) (PrioritySpec, error) {
	minimum, minimumInRange := priorityValue(match[1])
	maximum, maximumInRange := priorityValue(match[2])
	if !minimumInRange || !maximumInRange {
		return PrioritySpec{}, newFormatError(ErrPriorityRange, input, "")
	}
	if minimum > maximum {
		return PrioritySpec{}, newFormatError(ErrPriorityInverted, input, "")
	}
	return PrioritySpec{Minimum: minimum, Maximum: maximum}, nil
}

func priorityValue(digits string) (int, bool) {
	value, convertError := strconv.Atoi(digits)
	if convertError != nil {
		return 0, false
	}
	return value, value >= MinimumPriority && value <= MaximumPriority
}
