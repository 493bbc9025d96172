// Package logging is the structured logger used by the checkers server.
package logging

import "context"

// Logger writes leveled records with key/value attributes, e.g.
//
//	log.Info(ctx, "checker updated", "uuid", id, "ref_state", ref)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
