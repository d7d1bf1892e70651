package domain

import "fmt"

// Operation identifies one of the counter endpoints
type Operation string

const (
	Op42   Operation = "42"
	Op1337 Operation = "1337"
)

// Operations lists every operation in route registration order
var Operations = []Operation{Op42, Op1337}

// IsValid checks if the operation is known
func (o Operation) IsValid() bool {
	switch o {
	case Op42, Op1337:
		return true
	}
	return false
}

// Constant returns the dividend used by the operation
func (o Operation) Constant() uint64 {
	switch o {
	case Op42:
		return 42
	case Op1337:
		return 1337
	}
	return 0
}

// Sentinel returns the divisor the operation refuses by policy
func (o Operation) Sentinel() uint64 {
	switch o {
	case Op42:
		return 13
	case Op1337:
		return 23
	}
	return 0
}

// Path returns the HTTP route bound to the operation
func (o Operation) Path() string {
	return "/" + string(o)
}

// String implements fmt.Stringer
func (o Operation) String() string {
	return string(o)
}

// ParseOperation resolves an operation by name, accepting an optional leading slash
func ParseOperation(name string) (Operation, error) {
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	op := Operation(name)
	if !op.IsValid() {
		return "", fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}
