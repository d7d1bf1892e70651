// Package errors provides the failure taxonomy of the ergo service and its
// translation into wire responses.
//
// This package defines:
//   - Kind, the closed set of failure kinds that can reach a client
//   - AppError, a classified error carrying the client-visible message
//   - Constructors for each kind
//   - Translate, the single mapping from any error to a WireResponse
//
// # Kinds
//
//   - Decode: the request body could not be decoded (422)
//   - DivisionByZero: the count resolves to a zero divisor (422)
//   - Rejected: the count is refused by policy (500)
//   - Transport: anything else; the carrier's status is kept, else 500
//
// Adding a kind without a row in the wire table fails to compile.
//
// # Usage
//
// Handlers return errors unchanged and let the fiber error handler call
// Translate:
//
//	return apperrors.Decode("YAML", err)
//
//	resp := apperrors.Translate(err)
//	return c.Status(resp.Status).SendString(resp.Body)
package errors
