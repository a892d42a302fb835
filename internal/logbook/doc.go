// Package logbook stores bottle-feeding and diaper-change logs and enforces
// that every log is visible only to the parent who owns it.
//
// All log types share one ownership procedure (Service) and one SQLite
// implementation (SQLiteStore). A log type is described by a Schema naming
// its table, owner column, search column and type-specific fields, so adding
// a new kind of log does not add a new authorisation path.
//
// For get, update and delete the procedure is:
//  1. validate the input (update only)
//  2. look the record up by ID, failing with ErrNotFound
//  3. compare its owner with the caller, failing with ErrForbidden
//  4. perform the operation, still scoped by owner in SQL
//
// Create never reads an owner from input; the caller becomes the owner.
package logbook
