package extract

import "github.com/okian/sentiscope/pkg/logger"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithMaxBytes caps the size of an input before extraction.
func WithMaxBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}
