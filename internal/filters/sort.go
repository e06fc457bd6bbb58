package filters

import (
	"strings"
)

// sortFields maps user-facing aliases to the service's sort columns.
var sortFields = map[string]string{
	"created":  "created_at",
	"updated":  "updated_at",
	"priority": "priority",
	"title":    "title",
}

// sortFieldOrder lists the aliases in the order they are presented to users.
var sortFieldOrder = []string{"created", "updated", "priority", "title"}

var sortOrders = map[string]struct{}{
	"asc":  {},
	"desc": {},
}

// MapSortField translates a sort alias into the column name the service expects.
func MapSortField(input string) (string, error) {
	if field, known := sortFields[input]; known {
		return field, nil
	}
	return "", newFormatError(ErrInvalidSort, input, "valid: "+strings.Join(sortFieldOrder, ", "))
}

// SortFieldAliases returns the accepted sort aliases.
func SortFieldAliases() []string {
	return append([]string(nil), sortFieldOrder...)
}

// ValidateSortOrder accepts asc or desc.
func ValidateSortOrder(input string) (string, error) {
	if _, known := sortOrders[input]; known {
		return input, nil
	}
	return "", newFormatError(ErrInvalidOrder, input, "valid: asc, desc")
}
