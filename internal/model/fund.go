package model

// Fund is one catalog entry describing a buyer's stated focus. Records are
// loaded once per run and never mutated; partially populated records are
// normal and must not fail loading.
type Fund struct {
	Name          string   `json:"name" yaml:"name"`
	Industries    []string `json:"industries,omitempty" yaml:"industries,omitempty"`
	Regions       []string `json:"regions,omitempty" yaml:"regions,omitempty"`
	RevenueFocus  *Range   `json:"revenue_focus_usd,omitempty" yaml:"revenue_focus_usd,omitempty"`
	EmployeeFocus *Range   `json:"employee_focus,omitempty" yaml:"employee_focus,omitempty"`
	DealTypes     []string `json:"deal_types,omitempty" yaml:"deal_types,omitempty"`
	Notes         string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}
