package client

import (
	"context"

	"github.com/fivetwenty-io/identity-console/internal/http"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

const (
	personsPath    = "/identity/persons"
	identityStats  = "/identity/stats"
	runsPath       = "/identity/runs"
	originPath     = "/identity/origin"
	violationsPath = originPath + "/violations"
)

// IdentityClient implements ops.IdentityClient.
type IdentityClient struct {
	resource
}

// NewIdentityClient creates a new identity client.
func NewIdentityClient(httpClient *http.Client, cache *ops.QueryCache) *IdentityClient {
	return &IdentityClient{resource: newResource(httpClient, cache)}
}

// ListPersons implements ops.IdentityClient.ListPersons.
func (c *IdentityClient) ListPersons(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.Person], error) {
	return listResource[ops.Person](ctx, c.resource, personsPath, params)
}

// GetPerson implements ops.IdentityClient.GetPerson.
func (c *IdentityClient) GetPerson(ctx context.Context, personKey string) (*ops.PersonDetail, error) {
	segment, err := escapeSegment(personKey)
	if err != nil {
		return nil, err
	}

	return getResource[ops.PersonDetail](ctx, c.resource, personsPath+"/"+segment, nil)
}

// Stats implements ops.IdentityClient.Stats.
func (c *IdentityClient) Stats(ctx context.Context) (*ops.IdentityStats, error) {
	return getResource[ops.IdentityStats](ctx, c.resource, identityStats, nil)
}

// ListRuns implements ops.IdentityClient.ListRuns.
func (c *IdentityClient) ListRuns(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.IdentityRun], error) {
	return listResource[ops.IdentityRun](ctx, c.resource, runsPath, params)
}

// GetRun implements ops.IdentityClient.GetRun.
func (c *IdentityClient) GetRun(ctx context.Context, id string) (*ops.IdentityRun, error) {
	segment, err := escapeSegment(id)
	if err != nil {
		return nil, err
	}

	return getResource[ops.IdentityRun](ctx, c.resource, runsPath+"/"+segment, nil)
}

// ListOriginViolations implements ops.IdentityClient.ListOriginViolations.
func (c *IdentityClient) ListOriginViolations(ctx context.Context, params *ops.QueryParams) (*ops.ListResponse[ops.OriginViolation], error) {
	return listResource[ops.OriginViolation](ctx, c.resource, violationsPath, params)
}

// ResolveViolation implements ops.IdentityClient.ResolveViolation.
func (c *IdentityClient) ResolveViolation(ctx context.Context, id string, request *ops.ResolveViolationRequest) (*ops.ActionResult, error) {
	segment, err := escapeSegment(id)
	if err != nil {
		return nil, err
	}

	return postAction(ctx, c.resource, violationsPath+"/"+segment+"/resolve", request, "GET:"+violationsPath)
}

// MarkLegacy implements ops.IdentityClient.MarkLegacy.
func (c *IdentityClient) MarkLegacy(ctx context.Context, personKey string, request *ops.MarkLegacyRequest) (*ops.ActionResult, error) {
	segment, err := escapeSegment(personKey)
	if err != nil {
		return nil, err
	}

	if request == nil {
		request = &ops.MarkLegacyRequest{}
	}

	return postAction(ctx, c.resource, originPath+"/"+segment+"/mark-legacy", request,
		"GET:"+violationsPath, "GET:"+personsPath)
}
