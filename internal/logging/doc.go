// Package logging configures the shared slog logger: a console handler that
// renders compact key=value lines and a JSON handler for machine-readable
// output. It also provides attribute helpers and a progress sampler used to
// report per-row completion percentage without flooding the log.
package logging
