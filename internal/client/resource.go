package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// resource is embedded by every read client: reads go through the query
// cache, mutations go straight to the backend and invalidate prefixes.
type resource struct {
	httpClient *http.Client
	cache      *ops.QueryCache
}

func newResource(httpClient *http.Client, cache *ops.QueryCache) resource {
	return resource{httpClient: httpClient, cache: cache}
}

// listResource fetches one page of path through the cache.
func listResource[T any](ctx context.Context, r resource, path string, params *ops.QueryParams) (*ops.ListResponse[T], error) {
	params = withDefaultLimit(params)

	return ops.Query(ctx, r.cache, ops.CacheKey(path, params), func(ctx context.Context) (*ops.ListResponse[T], error) {
		resp, err := r.httpClient.Get(ctx, path, params.ToValues())
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", path, err)
		}

		var result ops.ListResponse[T]

		err = json.Unmarshal(resp.Body, &result)
		if err != nil {
			return nil, fmt.Errorf("parsing %s response: %w", path, err)
		}

		if result.Limit == 0 {
			result.Limit = params.Limit
			result.Offset = params.Offset
		}

		return &result, nil
	})
}

// getResource fetches a single object at path through the cache.
func getResource[T any](ctx context.Context, r resource, path string, query url.Values) (*T, error) {
	key := "GET:" + path
	if len(query) > 0 {
		key += ":" + query.Encode()
	}

	return ops.Query(ctx, r.cache, key, func(ctx context.Context) (*T, error) {
		resp, err := r.httpClient.Get(ctx, path, query)
		if err != nil {
			return nil, fmt.Errorf("getting %s: %w", path, err)
		}

		var result T

		err = json.Unmarshal(resp.Body, &result)
		if err != nil {
			return nil, fmt.Errorf("parsing %s response: %w", path, err)
		}

		return &result, nil
	})
}

// postAction sends a mutation and drops the cached reads under invalidate.
// The backend may answer with an empty body, an ActionResult, or the updated
// object; all count as success.
func postAction(ctx context.Context, r resource, path string, body interface{}, invalidate ...string) (*ops.ActionResult, error) {
	resp, err := r.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", path, err)
	}

	result := &ops.ActionResult{OK: true}

	if len(strings.TrimSpace(string(resp.Body))) > 0 {
		var decoded ops.ActionResult

		if json.Unmarshal(resp.Body, &decoded) == nil && (decoded.Status != "" || decoded.Message != "") {
			result.Status = decoded.Status
			result.Message = decoded.Message
		}
	}

	if r.cache != nil {
		for _, prefix := range invalidate {
			r.cache.Invalidate(prefix)
		}
	}

	return result, nil
}

func withDefaultLimit(params *ops.QueryParams) *ops.QueryParams {
	params = params.Clone()
	if params.Limit <= 0 {
		params.Limit = constants.DefaultPageSize
	}

	if params.Offset < 0 {
		params.Offset = 0
	}

	return params
}

func escapeSegment(segment string) (string, error) {
	if strings.TrimSpace(segment) == "" {
		return "", ops.ErrEmptyIdentifier
	}

	return url.PathEscape(segment), nil
}
