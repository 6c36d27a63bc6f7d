// Package http implements the REST API of the sync service.
//
// It wires chi routes, request handlers and middleware. Authentication,
// request tracing, access logging and response compression are handled here
// before requests reach the service layer.
package http
