package domain

// Counter is the request-local entity decoded from the input document and
// re-encoded into the output document.
type Counter struct {
	Count uint64 `json:"count" yaml:"count"`
}

// CounterInput is the decoded shape of the request body.
// Count is a pointer so a missing field can be told apart from zero.
type CounterInput struct {
	Count *uint64 `yaml:"count" validate:"required"`
}

// Counter converts validated input into a Counter
func (in CounterInput) Counter() *Counter {
	if in.Count == nil {
		return &Counter{}
	}
	return &Counter{Count: *in.Count}
}
