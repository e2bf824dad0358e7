package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Variant is the visual flavor of a badge.
type Variant string

// Badge variants.
const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
	VariantInfo    Variant = "info"
	VariantMuted   Variant = "muted"
)

var variantColors = map[Variant]lipgloss.Color{
	VariantSuccess: ColorSuccess,
	VariantWarning: ColorWarning,
	VariantError:   ColorError,
	VariantInfo:    ColorInfo,
	VariantMuted:   ColorMuted,
}

// Badge is a short label with a variant.
type Badge struct {
	Label   string
	Variant Variant
}

// NewBadge creates a badge. Unknown variants render as VariantDefault.
func NewBadge(label string, variant Variant) Badge {
	if _, ok := variantColors[variant]; !ok {
		variant = VariantDefault
	}

	return Badge{Label: label, Variant: variant}
}

// String renders the badge.
func (b Badge) String() string {
	style := lipgloss.NewStyle().Bold(true)
	if color, ok := variantColors[b.Variant]; ok {
		style = style.Foreground(color)
	}

	return style.Render(b.Label)
}

// StatusBadge picks a variant for a backend status or severity string and
// humanizes the label.
func StatusBadge(status string) Badge {
	if strings.TrimSpace(status) == "" {
		return NewBadge("—", VariantMuted)
	}

	return NewBadge(Humanize(status), StatusVariant(status))
}

// StatusVariant maps a status or severity to a variant.
func StatusVariant(status string) Variant {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok", "healthy", "completed", "success", "paid", "resolved", "acknowledged", "low":
		return VariantSuccess
	case "warn", "warning", "pending", "pending_active", "running", "medium", "stale":
		return VariantWarning
	case "error", "failed", "critical", "high", "pending_expired", "not_paid", "expected_not_paid":
		return VariantError
	case "info", "new", "open":
		return VariantInfo
	case "unknown", "skipped", "legacy":
		return VariantMuted
	default:
		return VariantDefault
	}
}

// Humanize turns snake_case or SCREAMING_CASE identifiers into title case.
func Humanize(value string) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", " ")

	return cases.Title(language.English).String(strings.ToLower(value))
}
