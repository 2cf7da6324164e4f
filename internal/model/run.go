package model

import "time"

// RunStatus represents the state of a persisted match run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// MatchRun is one recorded invocation of the matching pipeline, kept for
// audit. The result JSON is stored verbatim so a run can be replayed into
// any consumer of MatchResult.
type MatchRun struct {
	ID         string       `json:"id"`
	CompanyURL string       `json:"company_url"`
	Status     RunStatus    `json:"status"`
	Result     *MatchResult `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
