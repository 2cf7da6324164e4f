package model

// Range is a numeric interval with optional bounds. A nil bound is open:
// no Min means "down to -inf", no Max means "up to +inf". Ranges come from
// extracted profiles and fund records, both of which are frequently sparse.
type Range struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Empty reports whether the range carries no information at all.
func (r *Range) Empty() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

// Bounded reports whether both ends of the range are set.
func (r *Range) Bounded() bool {
	return r != nil && r.Min != nil && r.Max != nil
}

// Width returns Max-Min. The second return is false when either bound is open.
func (r *Range) Width() (float64, bool) {
	if !r.Bounded() {
		return 0, false
	}
	return *r.Max - *r.Min, true
}

// Contains reports whether v lies within the range, treating open bounds
// as infinite.
func (r *Range) Contains(v float64) bool {
	if r == nil {
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Float returns a pointer to v. Convenience for building literal ranges.
func Float(v float64) *float64 { return &v }
