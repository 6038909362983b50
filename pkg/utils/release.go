//go:build !debug
// +build !debug

package utils

import "github.com/rs/zerolog"

// DefaultLevel is used when no level is configured.
const DefaultLevel = zerolog.InfoLevel
