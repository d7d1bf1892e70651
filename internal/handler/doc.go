// Package handler contains HTTP request handlers for ergo.
//
// Handlers parse the transport request, call the counter service and write
// success responses. They never build error responses themselves: every
// error is returned to fiber, whose error handler (see the middleware
// package) translates it once.
//
// # Routes
//
//   - POST /42, POST /1337 - counter operations (YAML in, JSON out)
//   - GET /livez, /readyz, /health, /version - probes
//
// # Thread Safety
//
// All handlers are safe for concurrent use.
package handler
