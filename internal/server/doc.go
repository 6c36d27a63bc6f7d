// Package server runs the enabled transports of the sync service.
//
// It binds the HTTP and gRPC listeners, serves until the run context is
// done or a transport fails, and then stops every transport gracefully.
package server
