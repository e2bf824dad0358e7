package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/view"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const messageWidth = 60

func field[T any](key, header string) view.Column[T] {
	return view.Column[T]{Key: key, Header: header}
}

func custom[T any](key, header string, render func(row T) string) view.Column[T] {
	return view.Column[T]{Key: key, Header: header, Render: render}
}

func statusColumn[T any](key, header string, status func(row T) string) view.Column[T] {
	return custom(key, header, func(row T) string {
		return view.StatusBadge(status(row)).String()
	})
}

func dateTimeColumn[T any](key, header string, at func(row T) *time.Time) view.Column[T] {
	return custom(key, header, func(row T) string {
		return view.FormatDateTime(at(row))
	})
}

func textColumn[T any](key, header string, text func(row T) string) view.Column[T] {
	return custom(key, header, func(row T) string {
		value := text(row)
		if value == "" {
			return constants.NotAvailable
		}

		return view.Truncate(value, messageWidth)
	})
}

// actionColumn shows label for rows with an action and a muted placeholder
// for rows without one.
func actionColumn[T any](available func(row T) bool, label, done string) view.Column[T] {
	return custom("action", "Action", func(row T) string {
		if available(row) {
			return label
		}

		return view.MutedStyle.Render(done)
	})
}

// milestoneCell summarizes one milestone of the driver matrix.
func milestoneCell(achieved, paid bool) string {
	switch {
	case paid:
		return view.NewBadge("paid", view.VariantSuccess).String()
	case achieved:
		return view.NewBadge("achieved", view.VariantWarning).String()
	default:
		return constants.NotAvailable
	}
}

func anomalyBadge(item ops.ReconciliationItem) string {
	reason := ops.ClassifyAnomaly(item)

	variant := view.VariantInfo

	switch {
	case reason.Code == ops.AnomalyOK:
		variant = view.VariantSuccess
	case reason.Severity == ops.SeverityHigh:
		variant = view.VariantError
	case reason.Severity == ops.SeverityMedium:
		variant = view.VariantWarning
	}

	return view.NewBadge(reason.Label, variant).String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}

	return strings.Join(parts, ", ")
}

func optionalString(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}
