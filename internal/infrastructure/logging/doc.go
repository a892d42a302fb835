// Package logging provides structured logging for babylog.
//
// It wraps log/slog with JSON or text output, level filtering and default
// service/version fields:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log passwords, password hashes or bearer tokens.
package logging
