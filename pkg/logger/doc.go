// Package logger provides structured logging for mangapages.
//
// It wraps zerolog behind a small Logger interface with support for
// fields, error attachment and a process-wide instance:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("manga_id", 607).Info("Processing manga")
//
// Console output is written to stderr. NewTestLogger captures messages
// for assertions and NewNopLogger discards everything.
package logger
