package view

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// FieldType is the input kind of a filter field.
type FieldType string

// Field types.
const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
)

// Field is one filter input bound to a key of the filter map.
type Field struct {
	Key     string
	Label   string
	Type    FieldType
	Options []string
	Help    string
}

// FilterForm binds fields to a flat key/value map. Empty values mean "no
// filter" and are dropped from the map.
type FilterForm struct {
	fields []Field
	values map[string]string
}

// NewFilterForm creates a form over fields.
func NewFilterForm(fields ...Field) *FilterForm {
	return &FilterForm{fields: fields, values: map[string]string{}}
}

// Fields returns the form fields in display order.
func (f *FilterForm) Fields() []Field {
	return f.fields
}

// Field looks up a field by key.
func (f *FilterForm) Field(key string) (Field, bool) {
	for _, field := range f.fields {
		if field.Key == key {
			return field, true
		}
	}

	return Field{}, false
}

// Values returns a copy of the current filter map.
func (f *FilterForm) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for key, value := range f.values {
		out[key] = value
	}

	return out
}

// Set validates and stores one field and returns the whole updated map.
// An empty value clears the field.
func (f *FilterForm) Set(key, value string) (map[string]string, error) {
	field, ok := f.Field(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownFilter, key)
	}

	normalized, err := normalize(field, strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}

	if normalized == "" {
		delete(f.values, key)
	} else {
		f.values[key] = normalized
	}

	return f.Values(), nil
}

// Reset replaces every value, validating each one. On error the form is left
// unchanged.
func (f *FilterForm) Reset(values map[string]string) (map[string]string, error) {
	next := NewFilterForm(f.fields...)

	for key, value := range values {
		_, err := next.Set(key, value)
		if err != nil {
			return nil, err
		}
	}

	f.values = next.values

	return f.Values(), nil
}

// Clear drops every value.
func (f *FilterForm) Clear() {
	f.values = map[string]string{}
}

// ParseAssignments parses "key=value key2=value2" input, as typed in the
// dashboard filter prompt. A bare "key=" clears that key.
func (f *FilterForm) ParseAssignments(input string) (map[string]string, error) {
	next := NewFilterForm(f.fields...)
	next.values = f.Values()

	for _, token := range strings.Fields(input) {
		key, value, found := strings.Cut(token, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidFilterSyntax, token)
		}

		_, err := next.Set(key, value)
		if err != nil {
			return nil, err
		}
	}

	f.values = next.values

	return f.Values(), nil
}

// String summarizes active filters as "key=value" pairs in key order.
func (f *FilterForm) String() string {
	keys := make([]string, 0, len(f.values))
	for key := range f.values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + "=" + f.values[key]
	}

	return strings.Join(parts, " ")
}

// FlagName is the CLI flag bound to a filter key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// BindFlags registers one string flag per field.
func (f *FilterForm) BindFlags(flags *pflag.FlagSet) {
	for _, field := range f.fields {
		usage := field.Help
		if usage == "" {
			usage = "Filter by " + strings.ToLower(field.labelOrKey())
		}

		if len(field.Options) > 0 {
			usage += " (" + strings.Join(field.Options, ", ") + ")"
		}

		flags.String(FlagName(field.Key), "", usage)
	}
}

// FromFlags applies every changed filter flag and returns the map.
func (f *FilterForm) FromFlags(flags *pflag.FlagSet) (map[string]string, error) {
	for _, field := range f.fields {
		flag := flags.Lookup(FlagName(field.Key))
		if flag == nil || !flag.Changed {
			continue
		}

		_, err := f.Set(field.Key, flag.Value.String())
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag.Name, err)
		}
	}

	return f.Values(), nil
}

func (field Field) labelOrKey() string {
	if field.Label != "" {
		return field.Label
	}

	return Humanize(field.Key)
}

func normalize(field Field, value string) (string, error) {
	if value == "" {
		return "", nil
	}

	switch field.Type {
	case FieldNumber:
		_, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be a number", constants.ErrInvalidFilterValue, field.Key)
		}
	case FieldDate:
		parsed, err := ops.ParseDate(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be a YYYY-MM-DD date", constants.ErrInvalidFilterValue, field.Key)
		}

		return parsed.Format(ops.DateLayout), nil
	case FieldSelect:
		if len(field.Options) > 0 && !slices.Contains(field.Options, value) {
			return "", fmt.Errorf("%w: %s must be one of %s", constants.ErrInvalidFilterValue, field.Key, strings.Join(field.Options, ", "))
		}
	case FieldCheckbox:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", constants.ErrInvalidFilterValue, field.Key, constants.ErrInvalidBoolFlag)
		}

		return strconv.FormatBool(parsed), nil
	case FieldText:
	}

	return value, nil
}
