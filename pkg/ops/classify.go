package ops

import (
	"math"
)

// AnomalyCode labels why a reconciliation item looks off.
type AnomalyCode string

// Anomaly codes.
const (
	AnomalyOK                  AnomalyCode = "OK"
	AnomalyExpectedNotPaid     AnomalyCode = "EXPECTED_NOT_PAID"
	AnomalyPendingInWindow     AnomalyCode = "PENDING_IN_WINDOW"
	AnomalyPaidWithoutExpected AnomalyCode = "PAID_WITHOUT_EXPECTED"
	AnomalyAmountMismatch      AnomalyCode = "AMOUNT_MISMATCH"
	AnomalyUnknownStatus       AnomalyCode = "UNKNOWN_STATUS"
	AnomalyNoData              AnomalyCode = "NO_DATA"
)

// Severity ranks an anomaly for display.
type Severity string

// Severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Paid statuses reported by the reconciliation view.
const (
	PaidStatusPaid           = "paid"
	PaidStatusPendingExpired = "pending_expired"
	PaidStatusPendingActive  = "pending_active"
	PaidStatusNotPaid        = "not_paid"
)

// AnomalyReason is the display label for a reconciliation item.
type AnomalyReason struct {
	Code     AnomalyCode `json:"code"     yaml:"code"`
	Severity Severity    `json:"severity" yaml:"severity"`
	Label    string      `json:"label"    yaml:"label"`
}

const amountTolerance = 0.005

// ClassifyAnomaly maps the reconciliation fields of an item to a local
// display label. It has no side effects and its result is a heuristic for
// operators only; the backend remains authoritative on payment state.
func ClassifyAnomaly(item ReconciliationItem) AnomalyReason {
	if item.PaidStatus != nil && *item.PaidStatus != "" {
		switch *item.PaidStatus {
		case PaidStatusPaid:
			return AnomalyReason{Code: AnomalyOK, Severity: SeverityLow, Label: "Paid"}
		case PaidStatusPendingExpired:
			return AnomalyReason{Code: AnomalyExpectedNotPaid, Severity: SeverityHigh, Label: "Expected, payment window expired"}
		case PaidStatusPendingActive:
			return AnomalyReason{Code: AnomalyPendingInWindow, Severity: SeverityLow, Label: "Pending, within payment window"}
		case PaidStatusNotPaid:
			return AnomalyReason{Code: AnomalyExpectedNotPaid, Severity: SeverityHigh, Label: "Expected, not paid"}
		default:
			return AnomalyReason{Code: AnomalyUnknownStatus, Severity: SeverityMedium, Label: "Unrecognised status " + *item.PaidStatus}
		}
	}

	paid := item.PaidIsPaid != nil && *item.PaidIsPaid

	switch {
	case item.ExpectedAmount == nil && paid:
		return AnomalyReason{Code: AnomalyPaidWithoutExpected, Severity: SeverityMedium, Label: "Paid without an expected payment"}
	case item.ExpectedAmount != nil && paid && item.PaidAmount != nil &&
		math.Abs(*item.PaidAmount-*item.ExpectedAmount) > amountTolerance:
		return AnomalyReason{Code: AnomalyAmountMismatch, Severity: SeverityMedium, Label: "Paid amount differs from expected"}
	case item.ExpectedAmount != nil && paid:
		return AnomalyReason{Code: AnomalyOK, Severity: SeverityLow, Label: "Paid"}
	case item.ExpectedAmount != nil:
		return AnomalyReason{Code: AnomalyExpectedNotPaid, Severity: SeverityHigh, Label: "Expected, not paid"}
	default:
		return AnomalyReason{Code: AnomalyNoData, Severity: SeverityLow, Label: "No reconciliation data"}
	}
}
