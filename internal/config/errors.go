package config

import (
	"errors"
)

// Sentinel errors for config loading and validation, matchable with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
