package ops

import (
	"time"
)

// UserProfile is the signed-in operator, as returned by the login endpoint.
type UserProfile struct {
	ID       string `json:"id"                  yaml:"id"`
	Email    string `json:"email"               yaml:"email"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Role     string `json:"role,omitempty"      yaml:"role,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the operator profile.
type LoginResponse struct {
	AccessToken string      `json:"access_token" yaml:"access_token"`
	TokenType   string      `json:"token_type"   yaml:"token_type"`
	ExpiresIn   int         `json:"expires_in"   yaml:"expires_in"`
	User        UserProfile `json:"user"         yaml:"user"`
}

// Person is a canonical, de-duplicated individual.
type Person struct {
	PersonKey       string     `json:"person_key"                 yaml:"person_key"`
	FullName        string     `json:"primary_full_name"          yaml:"primary_full_name"`
	Phone           string     `json:"primary_phone,omitempty"    yaml:"primary_phone,omitempty"`
	License         string     `json:"primary_license,omitempty"  yaml:"primary_license,omitempty"`
	ConfidenceLevel string     `json:"confidence_level"           yaml:"confidence_level"`
	LinksCount      int        `json:"links_count"                yaml:"links_count"`
	DriverID        string     `json:"driver_id,omitempty"        yaml:"driver_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"                 yaml:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"       yaml:"updated_at,omitempty"`
}

// IdentityLink ties a source record to a person.
type IdentityLink struct {
	ID             int       `json:"id"              yaml:"id"`
	SourceTable    string    `json:"source_table"    yaml:"source_table"`
	SourcePK       string    `json:"source_pk"       yaml:"source_pk"`
	MatchRule      string    `json:"match_rule"      yaml:"match_rule"`
	MatchScore     float64   `json:"match_score"     yaml:"match_score"`
	ConfidenceTier string    `json:"confidence_level" yaml:"confidence_level"`
	LinkedAt       time.Time `json:"linked_at"       yaml:"linked_at"`
}

// PersonDetail is a person with its links and driver/lead records.
type PersonDetail struct {
	Person  Person                   `json:"person"            yaml:"person"`
	Links   []IdentityLink           `json:"links"             yaml:"links"`
	Drivers []map[string]interface{} `json:"drivers,omitempty" yaml:"drivers,omitempty"`
}

// IdentityStats are the headline counters of the identity registry.
type IdentityStats struct {
	TotalPersons    int            `json:"total_persons"     yaml:"total_persons"`
	TotalLinks      int            `json:"total_links"       yaml:"total_links"`
	TotalUnmatched  int            `json:"total_unmatched"   yaml:"total_unmatched"`
	ConversionRate  float64        `json:"conversion_rate"   yaml:"conversion_rate"`
	LinksBySource   map[string]int `json:"links_by_source"   yaml:"links_by_source"`
	UnmatchedByRule map[string]int `json:"unmatched_by_reason" yaml:"unmatched_by_reason"`
}

// IdentityRun is one execution of the backend matching job.
type IdentityRun struct {
	ID            int            `json:"id"                        yaml:"id"`
	Status        string         `json:"status"                    yaml:"status"`
	StartedAt     time.Time      `json:"started_at"                yaml:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"    yaml:"completed_at,omitempty"`
	ScopeDateFrom string         `json:"scope_date_from,omitempty" yaml:"scope_date_from,omitempty"`
	ScopeDateTo   string         `json:"scope_date_to,omitempty"   yaml:"scope_date_to,omitempty"`
	Incremental   bool           `json:"incremental"               yaml:"incremental"`
	Stats         map[string]int `json:"stats,omitempty"           yaml:"stats,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"   yaml:"error_message,omitempty"`
}

// OriginViolation is a person whose recorded origin breaks an origin rule.
type OriginViolation struct {
	ID            int        `json:"id"                     yaml:"id"`
	PersonKey     string     `json:"person_key"             yaml:"person_key"`
	ViolationType string     `json:"violation_type"         yaml:"violation_type"`
	OriginTag     string     `json:"origin_tag,omitempty"   yaml:"origin_tag,omitempty"`
	Severity      string     `json:"severity"               yaml:"severity"`
	DetectedAt    time.Time  `json:"detected_at"            yaml:"detected_at"`
	Resolved      bool       `json:"resolved"               yaml:"resolved"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"  yaml:"resolved_at,omitempty"`
	Resolution    string     `json:"resolution,omitempty"   yaml:"resolution,omitempty"`
}

// ResolveViolationRequest is the body of the resolve mutation.
type ResolveViolationRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes,omitempty"`
}

// MarkLegacyRequest is the body of the mark-legacy mutation.
type MarkLegacyRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Alert is an operational alert raised by the backend.
type Alert struct {
	ID             int                    `json:"id"                        yaml:"id"`
	AlertType      string                 `json:"alert_type"                yaml:"alert_type"`
	Severity       string                 `json:"severity"                  yaml:"severity"`
	Message        string                 `json:"message"                   yaml:"message"`
	DetectedAt     time.Time              `json:"detected_at"               yaml:"detected_at"`
	Acknowledged   bool                   `json:"acknowledged"              yaml:"acknowledged"`
	AcknowledgedAt *time.Time             `json:"acknowledged_at,omitempty" yaml:"acknowledged_at,omitempty"`
	AcknowledgedBy string                 `json:"acknowledged_by,omitempty" yaml:"acknowledged_by,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"         yaml:"details,omitempty"`
}

// GlobalHealth is the roll-up of every health check.
type GlobalHealth struct {
	Status      string    `json:"global_status" yaml:"global_status"`
	ChecksOK    int       `json:"checks_ok"     yaml:"checks_ok"`
	ChecksWarn  int       `json:"checks_warn"   yaml:"checks_warn"`
	ChecksError int       `json:"checks_error"  yaml:"checks_error"`
	GeneratedAt time.Time `json:"generated_at"  yaml:"generated_at"`
}

// HealthCheck is one data-health probe.
type HealthCheck struct {
	CheckKey  string     `json:"check_key"             yaml:"check_key"`
	Severity  string     `json:"severity"              yaml:"severity"`
	Status    string     `json:"status"                yaml:"status"`
	Message   string     `json:"message"               yaml:"message"`
	Drilldown string     `json:"drilldown_url,omitempty" yaml:"drilldown_url,omitempty"`
	LastRunAt *time.Time `json:"last_run_at,omitempty" yaml:"last_run_at,omitempty"`
}

// MaterializedViewHealth describes the freshness of a materialized view.
type MaterializedViewHealth struct {
	SchemaName          string     `json:"schema_name"                     yaml:"schema_name"`
	ViewName            string     `json:"mv_name"                         yaml:"mv_name"`
	IsPopulated         bool       `json:"is_populated"                    yaml:"is_populated"`
	SizeMB              float64    `json:"size_mb"                         yaml:"size_mb"`
	LastRefreshAt       *time.Time `json:"last_refresh_at,omitempty"       yaml:"last_refresh_at,omitempty"`
	MinutesSinceRefresh *int       `json:"minutes_since_refresh,omitempty" yaml:"minutes_since_refresh,omitempty"`
	Status              string     `json:"status"                          yaml:"status"`
}

// PaymentEligibility is one payable (or not yet payable) milestone.
type PaymentEligibility struct {
	PersonKey  string     `json:"person_key"            yaml:"person_key"`
	DriverID   string     `json:"driver_id,omitempty"   yaml:"driver_id,omitempty"`
	OriginTag  string     `json:"origin_tag"            yaml:"origin_tag"`
	ScoutID    *int       `json:"scout_id,omitempty"    yaml:"scout_id,omitempty"`
	Milestone  int        `json:"milestone_value"       yaml:"milestone_value"`
	LeadDate   string     `json:"lead_date,omitempty"   yaml:"lead_date,omitempty"`
	EligibleAt *time.Time `json:"eligible_at,omitempty" yaml:"eligible_at,omitempty"`
	Amount     float64    `json:"amount"                yaml:"amount"`
	Currency   string     `json:"currency"              yaml:"currency"`
	IsPayable  bool       `json:"is_payable"            yaml:"is_payable"`
	Reason     string     `json:"payable_reason,omitempty" yaml:"payable_reason,omitempty"`
}

// DriverMilestoneRow is one driver's row in the milestone matrix.
type DriverMilestoneRow struct {
	DriverID       string   `json:"driver_id"                  yaml:"driver_id"`
	PersonKey      string   `json:"person_key,omitempty"       yaml:"person_key,omitempty"`
	DriverName     string   `json:"driver_name,omitempty"      yaml:"driver_name,omitempty"`
	OriginTag      string   `json:"origin_tag,omitempty"       yaml:"origin_tag,omitempty"`
	LeadDate       string   `json:"lead_date,omitempty"        yaml:"lead_date,omitempty"`
	WeekStart      string   `json:"week_start,omitempty"       yaml:"week_start,omitempty"`
	M1Achieved     bool     `json:"m1_achieved"                yaml:"m1_achieved"`
	M5Achieved     bool     `json:"m5_achieved"                yaml:"m5_achieved"`
	M25Achieved    bool     `json:"m25_achieved"               yaml:"m25_achieved"`
	M1Paid         bool     `json:"m1_paid"                    yaml:"m1_paid"`
	M5Paid         bool     `json:"m5_paid"                    yaml:"m5_paid"`
	M25Paid        bool     `json:"m25_paid"                   yaml:"m25_paid"`
	ExpectedTotal  *float64 `json:"expected_total,omitempty"   yaml:"expected_total,omitempty"`
	PaidTotal      *float64 `json:"paid_total,omitempty"       yaml:"paid_total,omitempty"`
	InconsistentM5 bool     `json:"m5_without_m1,omitempty"    yaml:"m5_without_m1,omitempty"`
}

// ReconciliationSummaryRow aggregates expected vs paid by week and milestone.
type ReconciliationSummaryRow struct {
	PayWeekStart   string  `json:"pay_week_start_monday" yaml:"pay_week_start_monday"`
	Milestone      int     `json:"milestone_value"       yaml:"milestone_value"`
	CountExpected  int     `json:"count_expected"        yaml:"count_expected"`
	CountPaid      int     `json:"count_paid"            yaml:"count_paid"`
	CountPending   int     `json:"count_pending"         yaml:"count_pending"`
	AmountExpected float64 `json:"amount_expected_sum"   yaml:"amount_expected_sum"`
	AmountPaid     float64 `json:"amount_paid_sum"       yaml:"amount_paid_sum"`
	AmountDiff     float64 `json:"amount_diff"           yaml:"amount_diff"`
}

// ReconciliationItem is one expected payment joined to the ledger.
type ReconciliationItem struct {
	DriverID       string   `json:"driver_id"                       yaml:"driver_id"`
	PersonKey      string   `json:"person_key,omitempty"            yaml:"person_key,omitempty"`
	PayWeekStart   string   `json:"pay_week_start_monday,omitempty" yaml:"pay_week_start_monday,omitempty"`
	Milestone      int      `json:"milestone_value"                 yaml:"milestone_value"`
	ExpectedAmount *float64 `json:"expected_amount"                 yaml:"expected_amount"`
	PaidStatus     *string  `json:"paid_status,omitempty"           yaml:"paid_status,omitempty"`
	PaidIsPaid     *bool    `json:"paid_is_paid,omitempty"          yaml:"paid_is_paid,omitempty"`
	PaidAmount     *float64 `json:"paid_amount,omitempty"           yaml:"paid_amount,omitempty"`
	PaidDate       *string  `json:"paid_date,omitempty"             yaml:"paid_date,omitempty"`
	Currency       string   `json:"currency,omitempty"              yaml:"currency,omitempty"`
}

// ScoutBacklogRow counts leads awaiting scout attribution.
type ScoutBacklogRow struct {
	Source        string  `json:"source"                   yaml:"source"`
	WeekStart     string  `json:"week_start,omitempty"     yaml:"week_start,omitempty"`
	LeadsTotal    int     `json:"leads_total"              yaml:"leads_total"`
	WithScout     int     `json:"with_scout"               yaml:"with_scout"`
	WithoutScout  int     `json:"without_scout"            yaml:"without_scout"`
	CoverageRatio float64 `json:"coverage_ratio"           yaml:"coverage_ratio"`
	OldestPending string  `json:"oldest_pending,omitempty" yaml:"oldest_pending,omitempty"`
}

// ScoutConflict is a lead claimed by more than one scout.
type ScoutConflict struct {
	PersonKey     string   `json:"person_key"               yaml:"person_key"`
	DriverID      string   `json:"driver_id,omitempty"      yaml:"driver_id,omitempty"`
	ScoutIDs      []int    `json:"scout_ids"                yaml:"scout_ids"`
	Sources       []string `json:"sources"                  yaml:"sources"`
	FirstSeenDate string   `json:"first_seen_date,omitempty" yaml:"first_seen_date,omitempty"`
	ConflictType  string   `json:"conflict_type"            yaml:"conflict_type"`
}

// ScoutLiquidationRow is a scout's payout position for a period.
type ScoutLiquidationRow struct {
	ScoutID        int     `json:"scout_id"                yaml:"scout_id"`
	ScoutName      string  `json:"scout_name,omitempty"    yaml:"scout_name,omitempty"`
	PeriodStart    string  `json:"period_start,omitempty"  yaml:"period_start,omitempty"`
	DriversCount   int     `json:"drivers_count"           yaml:"drivers_count"`
	PayableCount   int     `json:"payable_count"           yaml:"payable_count"`
	AmountPayable  float64 `json:"amount_payable"          yaml:"amount_payable"`
	AmountPaid     float64 `json:"amount_paid"             yaml:"amount_paid"`
	AmountPending  float64 `json:"amount_pending"          yaml:"amount_pending"`
	LiquidationTag string  `json:"status,omitempty"        yaml:"status,omitempty"`
}
