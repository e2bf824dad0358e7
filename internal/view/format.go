package view

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const dateTimeLayout = "2006-01-02 15:04"

var printer = message.NewPrinter(language.English)

// FormatDate renders a timestamp as YYYY-MM-DD. Nil or zero is "—".
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format(ops.DateLayout)
}

// FormatDateString re-renders a backend date or timestamp string as
// YYYY-MM-DD, passing unparseable values through.
func FormatDateString(value string) string {
	if strings.TrimSpace(value) == "" {
		return constants.NotAvailable
	}

	parsed, err := ops.ParseDate(value)
	if err != nil {
		return value
	}

	return parsed.Format(ops.DateLayout)
}

// FormatDateTime renders a timestamp as "YYYY-MM-DD HH:MM" in UTC.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.UTC().Format(dateTimeLayout)
}

// FormatPercent renders a 0..1 ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*constants.PercentageMultiplier)
}

// FormatAmount renders an amount with thousands separators and two decimals,
// followed by the currency when known.
func FormatAmount(amount float64, currency string) string {
	formatted := printer.Sprintf("%.2f", amount)
	if currency == "" {
		return formatted
	}

	return formatted + " " + currency
}

// FormatOptionalAmount is FormatAmount for nullable amounts.
func FormatOptionalAmount(amount *float64, currency string) string {
	if amount == nil {
		return constants.NotAvailable
	}

	return FormatAmount(*amount, currency)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatBool renders yes/no.
func FormatBool(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

// Truncate shortens value to at most limit runes, marking the cut.
func Truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}

	if limit == 1 {
		return "…"
	}

	return string(runes[:limit-1]) + "…"
}

// FormatValue renders an arbitrary field value for a table cell.
func FormatValue(value interface{}) string {
	if value == nil {
		return constants.NotAvailable
	}

	switch typed := value.(type) {
	case string:
		if typed == "" {
			return constants.NotAvailable
		}

		return Truncate(typed, constants.StringTruncationLength)
	case bool:
		return FormatBool(typed)
	case time.Time:
		return FormatDateTime(&typed)
	case *time.Time:
		return FormatDateTime(typed)
	case float64:
		return printer.Sprintf("%.2f", typed)
	case int:
		return FormatCount(typed)
	case []string:
		if len(typed) == 0 {
			return constants.NotAvailable
		}

		return strings.Join(typed, ", ")
	case fmt.Stringer:
		return typed.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return constants.NotAvailable
		}

		return FormatValue(rv.Elem().Interface())
	}

	return fmt.Sprint(value)
}
