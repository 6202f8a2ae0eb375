package frontmatterops

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
)

// ContentFingerprint computes the mdfp fingerprint of a rendered document.
// Documents without front matter hash the body alone.
func ContentFingerprint(document []byte) (string, error) {
	fm, body, _, err := frontmatter.Split(document)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body)), nil
}
