// Package service runs counter requests independently of the transport.
//
// CounterService decodes a request body, decrements the count and
// evaluates the operation. Failures are returned as *errors.AppError so the
// transport boundary can translate them; Respond performs that translation
// itself for callers without an HTTP stack.
package service
