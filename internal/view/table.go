package view

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const (
	defaultSkeletonRows = 3
	skeletonCell        = "░░░░░░"
	cursorMarker        = "›"
)

// DefaultEmptyMessage is shown when a table has no rows.
const DefaultEmptyMessage = "No results"

// TableState is the single state a table renders in.
type TableState int

// Table states.
const (
	TableLoading TableState = iota
	TableEmpty
	TablePopulated
)

// Column describes one table column. Key names the row field by its JSON
// name; Render, when set, replaces the default field formatting.
type Column[T any] struct {
	Key    string
	Header string
	Render func(row T) string
}

// Table renders rows of T under fixed columns.
type Table[T any] struct {
	Columns      []Column[T]
	Rows         []T
	Loading      bool
	EmptyMessage string
	SkeletonRows int

	// ShowCursor adds a leading marker column pointing at row Cursor.
	ShowCursor bool
	Cursor     int
}

// NewTable creates a table with the given columns.
func NewTable[T any](columns ...Column[T]) *Table[T] {
	return &Table[T]{Columns: columns, EmptyMessage: DefaultEmptyMessage}
}

// State reports which of the three mutually exclusive states the table is in.
// Loading wins over rows so a refetch never shows stale and skeleton together.
func (t *Table[T]) State() TableState {
	switch {
	case t.Loading:
		return TableLoading
	case len(t.Rows) == 0:
		return TableEmpty
	default:
		return TablePopulated
	}
}

// Headers returns the column headers.
func (t *Table[T]) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		headers[i] = column.Header
		if headers[i] == "" {
			headers[i] = Humanize(column.Key)
		}
	}

	return headers
}

// Cells renders every row to strings.
func (t *Table[T]) Cells() [][]string {
	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = t.RowCells(row)
	}

	return cells
}

// RowCells renders one row.
func (t *Table[T]) RowCells(row T) []string {
	cells := make([]string, len(t.Columns))

	for i, column := range t.Columns {
		if column.Render != nil {
			cells[i] = column.Render(row)

			continue
		}

		cells[i] = FormatValue(FieldByJSONName(row, column.Key))
	}

	return cells
}

// Render writes the table in its current state.
func (t *Table[T]) Render(w io.Writer) error {
	switch t.State() {
	case TableLoading:
		return t.renderSkeleton(w)
	case TableEmpty:
		message := t.EmptyMessage
		if message == "" {
			message = DefaultEmptyMessage
		}

		_, err := fmt.Fprintln(w, MutedStyle.Render(message))
		if err != nil {
			return fmt.Errorf("writing empty state: %w", err)
		}

		return nil
	default:
		headers, cells := t.Headers(), t.Cells()
		if t.ShowCursor {
			headers, cells = withCursor(headers, cells, t.Cursor)
		}

		return writeTable(w, headers, cells)
	}
}

func withCursor(headers []string, cells [][]string, cursor int) ([]string, [][]string) {
	marked := make([][]string, len(cells))

	for i, row := range cells {
		marker := " "
		if i == cursor {
			marker = cursorMarker
		}

		marked[i] = append([]string{marker}, row...)
	}

	return append([]string{""}, headers...), marked
}

func (t *Table[T]) renderSkeleton(w io.Writer) error {
	rows := t.SkeletonRows
	if rows <= 0 {
		rows = defaultSkeletonRows
	}

	skeleton := make([][]string, rows)
	for i := range skeleton {
		skeleton[i] = make([]string, len(t.Columns))
		for j := range skeleton[i] {
			skeleton[i][j] = skeletonCell
		}
	}

	return writeTable(w, t.Headers(), skeleton)
}

// WriteKeyValues renders a two-column property table.
func WriteKeyValues(w io.Writer, pairs [][2]string) error {
	rows := make([][]string, len(pairs))
	for i, pair := range pairs {
		rows[i] = []string{pair[0], pair[1]}
	}

	return writeTable(w, []string{"Property", "Value"}, rows)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(headers)...)

	for _, row := range rows {
		err := table.Append(toAny(row)...)
		if err != nil {
			return fmt.Errorf("appending table row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}

	return nil
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, value := range values {
		out[i] = value
	}

	return out
}

// FieldByJSONName returns the exported field of row (a struct or pointer to
// one) whose json tag name is name, or nil.
func FieldByJSONName(row interface{}, name string) interface{} {
	rv := reflect.ValueOf(row)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == name || (tag == "" && strings.EqualFold(field.Name, name)) {
			return rv.Field(i).Interface()
		}
	}

	return nil
}
