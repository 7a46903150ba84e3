package config

import "errors"

// Sentinel error kinds returned by Load and Validate.
var (
	// ErrInvalidConfig marks a setting outside its allowed range.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a config file, dotenv file or env source that could not be read.
	ErrLoadConfig = errors.New("load config failed")
)
