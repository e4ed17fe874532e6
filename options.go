package mobi

import "log/slog"

type options struct {
	logger        *slog.Logger
	maxRecordSize int64
	skipCover     bool
}

// Option configures NewReader and Open.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.DiscardHandler),
		maxRecordSize: defaultMaxRecordSize,
	}
}

// WithLogger sets the structured logger used to report decode stages and
// recovered problems with optional sections. By default nothing is logged.
//
// If nil is passed, logging stays disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxRecordSize sets the largest record window, in bytes, that the
// decoder will read. Records larger than this are reported as a malformed
// container. Values <= 0 keep the default of 64 MB.
func WithMaxRecordSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRecordSize = n
		}
	}
}

// WithoutCover disables cover image extraction.
func WithoutCover() Option {
	return func(o *options) {
		o.skipCover = true
	}
}
