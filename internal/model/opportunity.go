package model

import (
	"strings"
	"time"
)

// Field length limits enforced at the API boundary.
const (
	MaxNameLength    = 255
	MaxStageLength   = 100
	MaxDetailsLength = 1000
)

// Opportunity is a trackable sales deal with a mandatory next-action
// workflow. TenantID is immutable after creation; all reads and writes are
// scoped by (ID, TenantID).
type Opportunity struct {
	ID       string
	TenantID string
	Name     string
	// Value is the monetary value in the smallest currency unit.
	// nil means no value recorded.
	Value *int64
	Stage string
	// NextActionAt is nil when no action is scheduled. When it is set,
	// NextActionDetails must be non-blank (and vice versa).
	NextActionAt      *time.Time
	NextActionDetails string
	LastActivityAt    time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasScheduledAction reports whether the opportunity currently carries a
// scheduled next action.
func (o *Opportunity) HasScheduledAction() bool {
	return o.NextActionAt != nil
}

// ValidateActionPairing checks the next-action cross-field invariant:
// details are required exactly when a timestamp is set.
func (o *Opportunity) ValidateActionPairing() bool {
	hasDetails := strings.TrimSpace(o.NextActionDetails) != ""
	return o.HasScheduledAction() == hasDetails
}

// DueOpportunity is the read-side projection returned by the due-action
// query. NextActionAt is always set here: a row is only due when an action
// is scheduled.
type DueOpportunity struct {
	ID                string
	Name              string
	Value             *int64
	Stage             string
	NextActionAt      time.Time
	NextActionDetails string
}
