//go:build !cgo

package lang

import (
	"context"

	"autograde/internal/errors"
)

// IsAvailable reports whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return false
}

// Parse is unavailable without cgo. Structural queries and file
// classification degrade; callers should check IsAvailable first.
func Parse(_ context.Context, _ []byte, lang Language) (*Tree, error) {
	return nil, errors.Newf(errors.ParseFailed,
		"structural analysis for %s requires a build with cgo enabled", lang)
}
