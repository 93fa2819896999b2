package sl

import "log/slog"

// Err wraps error to slog.Attr.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
