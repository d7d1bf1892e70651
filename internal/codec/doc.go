// Package codec holds the wire codecs of the counter endpoints.
//
// Requests are decoded from YAML and responses are encoded as JSON. The
// asymmetry is part of the public contract.
package codec
