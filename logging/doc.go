// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. Components receive a Logger at construction time and fall
// back to NoOpLogger when none is supplied, keeping tests silent by default.
package logging
