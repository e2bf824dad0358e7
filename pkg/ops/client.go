package ops

import (
	"context"
	"io"
	"time"
)

// DefaultPageLimit is the page size used when none is given.
const DefaultPageLimit = 50

// AuthClient covers login and the current user.
type AuthClient interface {
	Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context) (*UserProfile, error)
}

// IdentityClient covers persons, identity runs and origin violations.
type IdentityClient interface {
	ListPersons(ctx context.Context, params *QueryParams) (*ListResponse[Person], error)
	GetPerson(ctx context.Context, personKey string) (*PersonDetail, error)
	Stats(ctx context.Context) (*IdentityStats, error)
	ListRuns(ctx context.Context, params *QueryParams) (*ListResponse[IdentityRun], error)
	GetRun(ctx context.Context, id string) (*IdentityRun, error)
	ListOriginViolations(ctx context.Context, params *QueryParams) (*ListResponse[OriginViolation], error)
	ResolveViolation(ctx context.Context, id string, request *ResolveViolationRequest) (*ActionResult, error)
	MarkLegacy(ctx context.Context, personKey string, request *MarkLegacyRequest) (*ActionResult, error)
}

// AlertsClient covers operational alerts.
type AlertsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Alert], error)
	Acknowledge(ctx context.Context, id string) (*ActionResult, error)
}

// HealthClient covers data health checks.
type HealthClient interface {
	Global(ctx context.Context) (*GlobalHealth, error)
	Checks(ctx context.Context, params *QueryParams) (*ListResponse[HealthCheck], error)
	MaterializedViews(ctx context.Context, params *QueryParams) (*ListResponse[MaterializedViewHealth], error)
}

// PaymentsClient covers payment eligibility and the driver milestone matrix.
type PaymentsClient interface {
	Eligibility(ctx context.Context, params *QueryParams) (*ListResponse[PaymentEligibility], error)
	DriverMatrix(ctx context.Context, params *QueryParams) (*ListResponse[DriverMilestoneRow], error)
}

// ReconciliationClient covers the partner payment reconciliation views.
type ReconciliationClient interface {
	Summary(ctx context.Context, params *QueryParams) (*ListResponse[ReconciliationSummaryRow], error)
	Items(ctx context.Context, params *QueryParams) (*ListResponse[ReconciliationItem], error)
}

// ScoutsClient covers scout attribution.
type ScoutsClient interface {
	Backlog(ctx context.Context, params *QueryParams) (*ListResponse[ScoutBacklogRow], error)
	Conflicts(ctx context.Context, params *QueryParams) (*ListResponse[ScoutConflict], error)
	Liquidation(ctx context.Context, params *QueryParams) (*ListResponse[ScoutLiquidationRow], error)
}

// ExportKind names a CSV export.
type ExportKind string

// Available exports.
const (
	ExportDriverMatrix        ExportKind = "driver-matrix"
	ExportScoutLiquidation    ExportKind = "scout-liquidation"
	ExportReconciliationItems ExportKind = "reconciliation-items"
)

// ExportKinds lists every export in display order.
func ExportKinds() []ExportKind {
	return []ExportKind{ExportDriverMatrix, ExportScoutLiquidation, ExportReconciliationItems}
}

// ExportsClient streams CSV exports.
type ExportsClient interface {
	Export(ctx context.Context, kind ExportKind, params *QueryParams, w io.Writer) (int64, error)
}

// Client is the full backend API surface.
type Client interface {
	Auth() AuthClient
	Identity() IdentityClient
	Alerts() AlertsClient
	Health() HealthClient
	Payments() PaymentsClient
	Reconciliation() ReconciliationClient
	Scouts() ScoutsClient
	Exports() ExportsClient

	// Cache returns the query cache reads go through, or nil.
	Cache() *QueryCache
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an ops Client.
//
// # Authentication
//
// AccessToken, when set, is sent as a static Bearer token. Otherwise a
// TokenSource supplies the token per request; opsclient wires the session
// file as that source. With neither, requests are unauthenticated, which is
// only useful for login.
//
// # Retries
//
// Reads are retried by the query cache (CacheConfig.Options.Retry). The
// transport retries only when RetryMax > 0, so with the cache enabled the
// two layers do not multiply.
type Config struct {
	// APIEndpoint is the backend base URL, e.g. "https://ops.example.com".
	// The "/api/v1" prefix is added by the client.
	APIEndpoint string

	// AccessToken is a static bearer token.
	AccessToken string

	// TokenSource supplies the bearer token per request when AccessToken is empty.
	TokenSource func(ctx context.Context) (string, error)

	// OnUnauthorized is called when the backend answers 401.
	OnUnauthorized func()

	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration

	// RetryMax is the transport retry count for 5xx, 429 and connection errors.
	RetryMax int
	// RetryWaitMin is the minimum transport backoff.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum transport backoff.
	RetryWaitMax time.Duration

	// Cache configures the query cache. Nil selects DefaultCacheConfig.
	Cache *CacheConfig

	// RequestInterceptors run before every request, in order.
	RequestInterceptors []RequestInterceptor
	// ResponseInterceptors run after every response, in order.
	ResponseInterceptors []ResponseInterceptor

	// Debug enables request/response logging.
	Debug bool
	// Logger receives structured logs from the HTTP layer and the cache.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
