// Package httputil provides shared HTTP response utilities for handlers.
//
// Handlers use these helpers instead of raw http.ResponseWriter calls so
// JSON formatting and error envelopes stay consistent across endpoints.
package httputil
