// Package filters validates user-supplied filter expressions (time windows, priority specs,
// sort fields) and turns them into the query parameters the service understands.
package filters

import (
	"net/url"
	"strconv"
	"time"
)

// Option names read by TaskQuery.
const (
	StatusOption   = "status"
	AssigneeOption = "assignee"
	SinceOption    = "since"
	UntilOption    = "until"
	PriorityOption = "priority"
	SortOption     = "sort"
	OrderOption    = "order"
	LimitOption    = "limit"
)

// Query parameter names written by TaskQuery.
const (
	StatusParameter        = "status"
	AssigneeParameter      = "assignee"
	CreatedAfterParameter  = "created_after"
	CreatedBeforeParameter = "created_before"
	SortParameter          = "sort"
	OrderParameter         = "order"
	LimitParameter         = "limit"
)

// OptionSource exposes the valued options of one invocation.
type OptionSource interface {
	Option(name string) (string, bool)
}

// TaskQuery validates every filter-bearing option and returns the normalized query.
// The first malformed option aborts with its FormatError.
func TaskQuery(options OptionSource, now time.Time) (url.Values, error) {
	values := url.Values{}

	for optionName, parameterName := range map[string]string{
		StatusOption:   StatusParameter,
		AssigneeOption: AssigneeParameter,
	} {
		if value, present := options.Option(optionName); present && value != "" {
			values.Set(parameterName, value)
		}
	}

	for _, window := range []struct {
		option    string
		parameter string
	}{
		{option: SinceOption, parameter: CreatedAfterParameter},
		{option: UntilOption, parameter: CreatedBeforeParameter},
	} {
		raw, _ := options.Option(window.option)
		normalized, present, parseError := ParseTime(raw, now)
		if parseError != nil {
			return nil, parseError
		}
		if present {
			values.Set(window.parameter, normalized)
		}
	}

	rawPriority, _ := options.Option(PriorityOption)
	priority, priorityError := ParsePriority(rawPriority)
	if priorityError != nil {
		return nil, priorityError
	}
	priority.Apply(values)

	if rawSort, present := options.Option(SortOption); present {
		field, sortError := MapSortField(rawSort)
		if sortError != nil {
			return nil, sortError
		}
		values.Set(SortParameter, field)
	}

	if rawOrder, present := options.Option(OrderOption); present {
		order, orderError := ValidateSortOrder(rawOrder)
		if orderError != nil {
			return nil, orderError
		}
		values.Set(OrderParameter, order)
	}

	if rawLimit, present := options.Option(LimitOption); present {
		limit, limitError := ParseLimit(rawLimit)
		if limitError != nil {
			return nil, limitError
		}
		values.Set(LimitParameter, strconv.Itoa(limit))
	}

	return values, nil
}

// ParseLimit accepts a positive decimal integer.
func ParseLimit(input string) (int, error) {
	limit, convertError := strconv.Atoi(input)
	if convertError != nil || limit < 1 {
		return 0, newFormatError(ErrInvalidLimit, input, "must be a positive integer")
	}
	return limit, nil
}
