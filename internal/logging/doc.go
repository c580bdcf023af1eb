// Package logging builds the slog loggers the daemon and CLI share.
//
// Two formats are supported: a console handler that renders one line per
// record with a component prefix and key=value attrs, and a JSON handler for
// machine consumption. Helpers re-export slog attr constructors so callers
// use one import, and WithContext lifts correlation identifiers out of a
// context into logger fields.
package logging
