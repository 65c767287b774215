// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON and raw (image) responses, error mapping, logging, recovery and
// correlation ID propagation.
package pkgrouter
