// Package format holds the display formatting helpers shared by the client
// views: whole-dollar currency and "Jun 1, 2023" style dates.
package format

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency renders a USD amount with no cents and en-US digit grouping.
// The amount is rounded half away from zero to a whole dollar.
func Currency(amount float64) string {
	n := int64(math.Round(amount))
	if n < 0 {
		return printer.Sprintf("-$%d", -n)
	}
	return printer.Sprintf("$%d", n)
}

const dateLayout = "Jan 2, 2006"

// Date renders a time as a short human date, e.g. "Jun 1, 2023".
func Date(t time.Time) string {
	return t.Format(dateLayout)
}

// InvalidDate is the placeholder DateString renders for unparseable input.
const InvalidDate = "Invalid Date"

var dateInputLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
}

// DateString parses an ISO-style date string and renders it like Date.
func DateString(s string) string {
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t)
		}
	}
	return InvalidDate
}
