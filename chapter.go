package tagparser

import (
	"github.com/kalmuthu/tagparser/internal/types"
)

// Chapter is an alias to types.Chapter for backwards compatibility.
// Re-exporting from internal/types to maintain public API.
type Chapter = types.Chapter
