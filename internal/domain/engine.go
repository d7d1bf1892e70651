package domain

import "errors"

// Errors produced by Evaluate. The set is closed: callers translating them
// into responses must handle both.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrRejected       = errors.New("rejected by policy")
)

// Evaluate divides the operation's constant by n.
//
// The sentinel check runs before the zero check, so an operation whose
// sentinel were zero would report ErrRejected.
func Evaluate(op Operation, n uint64) (uint64, error) {
	switch n {
	case op.Sentinel():
		return 0, ErrRejected
	case 0:
		return 0, ErrDivisionByZero
	}
	return op.Constant() / n, nil
}
