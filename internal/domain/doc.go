// Package domain contains the counter operations and their evaluation rules.
//
// An Operation pairs a constant with a sentinel. Evaluate divides the
// constant by the input, refusing the sentinel and zero:
//
//	result, err := domain.Evaluate(domain.Op42, 6) // 7, nil
//	_, err = domain.Evaluate(domain.Op42, 13)       // ErrRejected
//	_, err = domain.Evaluate(domain.Op1337, 0)      // ErrDivisionByZero
//
// Evaluate is pure and safe for concurrent use. Mapping its errors to
// responses happens in package errors.
package domain
