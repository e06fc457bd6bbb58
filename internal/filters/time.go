package filters

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// TimestampLayout is the normalized representation of every parsed time filter.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	timeFormatDetail = "use Nm, Nh, Nd, Nw, NM, today, yesterday, or an ISO date"
	keywordToday     = "today"
	keywordYesterday = "yesterday"
	daysPerWeek      = 7
	monthsPerYear    = 12
	earliestYear     = 0
	latestYear       = 9999
)

type timeRule struct {
	pattern *regexp.Regexp
	resolve func(match []string, now time.Time) (time.Time, bool)
}

// timeRules are tried in order; the first matching pattern decides the result.
// Lowercase m means minutes and uppercase M means calendar months.
var timeRules = []timeRule{
	{pattern: regexp.MustCompile(`^(\d+)m$`), resolve: durationAgo(time.Minute)},
	{pattern: regexp.MustCompile(`^(\d+)h$`), resolve: durationAgo(time.Hour)},
	{pattern: regexp.MustCompile(`^(\d+)d$`), resolve: durationAgo(24 * time.Hour)},
	{pattern: regexp.MustCompile(`^(\d+)w$`), resolve: durationAgo(daysPerWeek * 24 * time.Hour)},
	{pattern: regexp.MustCompile(`^(\d+)M$`), resolve: monthsAgo},
	{pattern: regexp.MustCompile(`^` + keywordToday + `$`), resolve: daysBeforeMidnight(0)},
	{pattern: regexp.MustCompile(`^` + keywordYesterday + `$`), resolve: daysBeforeMidnight(1)},
	{pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), resolve: parseLayouts(utcDateLayouts, time.UTC)},
	{pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T.+$`), resolve: parseTimestamp},
}

var utcDateLayouts = []string{"2006-01-02"}

var zonedTimestampLayouts = []string{time.RFC3339Nano, time.RFC3339}

var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTime normalizes a time filter expression relative to now. An empty input yields
// ok == false and no error, meaning no filter should be sent.
func ParseTime(input string, now time.Time) (string, bool, error) {
	if input == "" {
		return "", false, nil
	}
	for _, rule := range timeRules {
		match := rule.pattern.FindStringSubmatch(input)
		if match == nil {
			continue
		}
		resolved, resolvedOK := rule.resolve(match, now)
		if !resolvedOK || !representable(resolved) {
			break
		}
		return FormatTimestamp(resolved), true, nil
	}
	return "", false, newFormatError(ErrInvalidTime, input, timeFormatDetail)
}

// FormatTimestamp renders an instant the way every time filter is sent to the service.
func FormatTimestamp(value time.Time) string {
	return value.UTC().Format(TimestampLayout)
}

// representable reports whether value fits the four-digit year of TimestampLayout.
func representable(value time.Time) bool {
	year := value.UTC().Year()
	return year >= earliestYear && year <= latestYear
}

// durationAgo subtracts amount units from now. Amounts whose duration does not fit in
// time.Duration are rejected instead of wrapping around into the future.
func durationAgo(unit time.Duration) func([]string, time.Time) (time.Time, bool) {
	return func(match []string, now time.Time) (time.Time, bool) {
		amount, convertError := strconv.ParseInt(match[1], 10, 64)
		if convertError != nil || amount > math.MaxInt64/int64(unit) {
			return time.Time{}, false
		}
		return now.Add(-time.Duration(amount) * unit), true
	}
}

func monthsAgo(match []string, now time.Time) (time.Time, bool) {
	amount, convertError := strconv.Atoi(match[1])
	if convertError != nil || amount > (latestYear+1)*monthsPerYear {
		return time.Time{}, false
	}
	return now.AddDate(0, -amount, 0), true
}

func daysBeforeMidnight(days int) func([]string, time.Time) (time.Time, bool) {
	return func(_ []string, now time.Time) (time.Time, bool) {
		local := now.In(time.Local)
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
		return midnight.AddDate(0, 0, -days), true
	}
}

func parseLayouts(layouts []string, location *time.Location) func([]string, time.Time) (time.Time, bool) {
	return func(match []string, _ time.Time) (time.Time, bool) {
		for _, layout := range layouts {
			if parsed, parseError := time.ParseInLocation(layout, match[0], location); parseError == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}
}

// parseTimestamp accepts timestamps with an explicit offset and, failing that, treats a
// timestamp without offset as local time.
func parseTimestamp(match []string, now time.Time) (time.Time, bool) {
	if parsed, ok := parseLayouts(zonedTimestampLayouts, time.UTC)(match, now); ok {
		return parsed, true
	}
	return parseLayouts(localTimestampLayouts, time.Local)(match, now)
}
