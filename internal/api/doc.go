// Package api implements the babylog HTTP REST API.
//
// This package provides:
//   - Account registration and OAuth2-style password login
//   - Bearer token authentication on every log endpoint
//   - Owner-scoped CRUD for bottle and diaper logs
//   - Middleware stack (request ID, logging, recovery, CORS, tracing)
//
// # Errors
//
// Every failure is written as {"status","code","message"} with an optional
// "details" list of rejected fields. Domain sentinel errors are mapped to
// status codes in one place, writeServiceError, so handlers only return
// what the service told them.
//
// # Ownership
//
// Handlers never filter by owner themselves. They pass the authenticated
// user's ID to the logbook service, which checks existence first and
// ownership second for every read and write.
package api
