package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ListResponse is a page of items plus the total across all pages.
//
// The backend answers list endpoints in one of three shapes, all of which
// decode into ListResponse:
//
//	{"items": [...], "total": 120, "limit": 50, "offset": 0}
//	{"data": [...], "meta": {"total": 120, "limit": 50, "offset": 0}}
//	[...]
type ListResponse[T any] struct {
	Items  []T `json:"items"  yaml:"items"`
	Total  int `json:"total"  yaml:"total"`
	Limit  int `json:"limit"  yaml:"limit"`
	Offset int `json:"offset" yaml:"offset"`
}

type listMeta struct {
	Total    int `json:"total"`
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type listEnvelope[T any] struct {
	Items    []T       `json:"items"`
	Data     []T       `json:"data"`
	Rows     []T       `json:"rows"`
	Total    *int      `json:"total"`
	Count    *int      `json:"count"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Meta     *listMeta `json:"meta"`
}

// UnmarshalJSON accepts every list shape the backend produces.
func (l *ListResponse[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T

		err := json.Unmarshal(trimmed, &items)
		if err != nil {
			return fmt.Errorf("decoding list items: %w", err)
		}

		l.Items = items
		l.Total = len(items)
		l.Limit = len(items)
		l.Offset = 0

		return nil
	}

	var env listEnvelope[T]

	err := json.Unmarshal(trimmed, &env)
	if err != nil {
		return fmt.Errorf("decoding list envelope: %w", err)
	}

	switch {
	case env.Items != nil:
		l.Items = env.Items
	case env.Data != nil:
		l.Items = env.Data
	default:
		l.Items = env.Rows
	}

	if l.Items == nil {
		l.Items = []T{}
	}

	l.Limit, l.Offset = env.Limit, env.Offset
	if env.PageSize > 0 {
		l.Limit = env.PageSize
		l.Offset = max(env.Page-1, 0) * env.PageSize
	}

	switch {
	case env.Total != nil:
		l.Total = *env.Total
	case env.Meta != nil:
		l.Total = env.Meta.Total
		if env.Meta.Limit > 0 {
			l.Limit, l.Offset = env.Meta.Limit, env.Meta.Offset
		}

		if env.Meta.PageSize > 0 {
			l.Limit = env.Meta.PageSize
			l.Offset = max(env.Meta.Page-1, 0) * env.Meta.PageSize
		}
	case env.Count != nil:
		l.Total = *env.Count
	default:
		l.Total = len(l.Items)
	}

	return nil
}

// Pager returns the pagination math for this page.
func (l *ListResponse[T]) Pager() Pager {
	return Pager{Total: l.Total, Limit: l.Limit, Offset: l.Offset}
}

// ActionResult is the success envelope returned by mutation endpoints that do
// not echo the updated resource.
type ActionResult struct {
	OK      bool   `json:"ok"                yaml:"ok"`
	Status  string `json:"status,omitempty"  yaml:"status,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}
