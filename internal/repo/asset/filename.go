package asset

import (
	"fmt"
	"strings"

	"github.com/mkrupp/clickcard/internal/domain"
)

// ValidateFilename checks that name is a single, opaque path segment.
// It is a purely lexical check and never consults the filesystem.
func ValidateFilename(name string) error {
	switch {
	case name == "", name == ".":
		return fmt.Errorf("%w: empty", domain.ErrInvalidName)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: parent segment", domain.ErrInvalidName)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("%w: path separator", domain.ErrInvalidName)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: nul byte", domain.ErrInvalidName)
	}

	return nil
}
