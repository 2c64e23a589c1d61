// Package http contains the chi HTTP handlers for the dashboard API. Each
// handler exposes a Routes() method mounted by the application router, and
// all error responses flow through the shared RFC 7807 error handler.
package http
