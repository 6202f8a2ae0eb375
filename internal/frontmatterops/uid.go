package frontmatterops

import (
	"strings"

	"github.com/google/uuid"
)

// CanonicalUID renders a compact 32-hex uid in the dashed 8-4-4-4-12 form.
// Input that is not a 32-hex uid is returned unchanged.
func CanonicalUID(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) != 32 {
		return raw
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return raw
	}
	return id.String()
}
