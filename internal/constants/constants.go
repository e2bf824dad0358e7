package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and session files.
	ConfigFilePerm = 0600
)

// Configuration locations.
const (
	// ConfigDirName is the per-user directory holding config and session.
	ConfigDirName = ".idops"

	// ConfigFileName is the config file name inside ConfigDirName.
	ConfigFileName = "config"

	// ConfigFileType is the config file format.
	ConfigFileType = "yml"

	// SessionFileName is the session file inside ConfigDirName.
	SessionFileName = "session.yml"

	// EnvPrefix prefixes environment overrides, e.g. IDOPS_API.
	EnvPrefix = "IDOPS"

	// DefaultAPIEndpoint is used when nothing else is configured.
	DefaultAPIEndpoint = "http://localhost:8000"

	// APIPrefix is prepended to every backend path.
	APIPrefix = "/api/v1"
)

// Session keys.
const (
	// SessionKeyToken holds the bearer token.
	SessionKeyToken = "auth_token"

	// SessionKeyProfile holds the cached user profile.
	SessionKeyProfile = "user_profile"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultBatchConcurrency bounds concurrent mutations in a batch.
	DefaultBatchConcurrency = 5

	// ExportHTTPTimeout is used for CSV exports.
	ExportHTTPTimeout = 2 * time.Minute
)

// Transport retry settings. The query cache owns retry, so the transport
// does not retry unless configured to.
const (
	// DefaultTransportRetryMax is the retryablehttp retry count.
	DefaultTransportRetryMax = 0

	// DefaultRetryWaitMin is the minimum transport wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum transport wait between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Query cache policy.
const (
	// DefaultStaleTime is how long a query result counts as fresh.
	DefaultStaleTime = 30 * time.Second

	// DefaultGCTime is how long an unread entry is kept.
	DefaultGCTime = 5 * time.Minute

	// DefaultQueryRetry is the number of retries of a failed query.
	DefaultQueryRetry = 3

	// DefaultRetryDelay is the first retry delay of a failed query.
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay caps the query retry delay.
	DefaultMaxRetryDelay = 30 * time.Second

	// MinCacheJanitorInterval is the shortest eviction sweep interval.
	MinCacheJanitorInterval = 1 * time.Second

	// ExponentialBackoffBase is the base for exponential backoff.
	ExponentialBackoffBase = 2
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of rows per page.
	DefaultPageSize = 50

	// SmallPageSize is used by overview sections.
	SmallPageSize = 5

	// MaxPageSize is the largest page the backend accepts.
	MaxPageSize = 500

	// OverviewAlertLimit is how many open alerts the overview shows.
	OverviewAlertLimit = 10
)

// Token handling.
const (
	// TokenExpirationBuffer is subtracted from the token expiry.
	TokenExpirationBuffer = 30 * time.Second

	// TokenPartsCount is the expected number of parts in a JWT token.
	TokenPartsCount = 3
)

// UI and display constants.
const (
	// NotAvailable is shown for missing values.
	NotAvailable = "—"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// AcknowledgedPlaceholder replaces the acknowledge action once done.
	AcknowledgedPlaceholder = "acknowledged"

	// StringTruncationLength is the default length for truncating cells.
	StringTruncationLength = 60

	// PercentageMultiplier converts ratios to percentages.
	PercentageMultiplier = 100.0

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// DefaultTerminalWidth is used when the terminal size is unknown.
	DefaultTerminalWidth = 120
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatCSV for CSV output format.
	FormatCSV = "csv"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Command argument counts.
const (
	// OneArgumentRequired indicates commands requiring exactly one argument.
	OneArgumentRequired = 1

	// TwoArgumentsRequired indicates commands requiring exactly two arguments.
	TwoArgumentsRequired = 2
)

// HTTP headers.
const (
	// HeaderRequestID correlates a request across client and server logs.
	HeaderRequestID = "X-Request-ID"

	// HeaderUserAgent identifies the client.
	HeaderUserAgent = "User-Agent"

	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "idops/1.0.0"
)
