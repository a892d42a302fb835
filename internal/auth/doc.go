// Package auth provides parent accounts and bearer-token authentication.
//
// It covers:
//   - Argon2id password hashing in PHC string format
//   - Stateless HS256 JWT access tokens (no refresh tokens; clients log in again)
//   - A SQLite-backed user repository keyed by email
//   - Service, which ties registration, login and token resolution together
//
// Tokens carry the user ID as the subject. Every protected request resolves
// the subject back to a stored user, so a token for a deleted account stops
// working immediately.
package auth
