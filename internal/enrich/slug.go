package enrich

import (
	"fmt"
	"strings"
	"time"
)

// maxSlugLength caps the claim-derived part of a slug.
const maxSlugLength = 80

// Slug derives a URL-safe slug from claim text: lowercase, characters outside
// [a-z0-9-] become separators, consecutive separators collapse, leading and
// trailing separators are trimmed, and the result is capped at 80 characters.
// Text with no retainable characters falls back to claim-<YYYYMMDD> when a
// date is supplied, or claim-<unix-timestamp> otherwise. A supplied date is
// appended to reduce collisions between unrelated claims with identical text.
func Slug(text string, claimDate time.Time) string {
	var b strings.Builder
	lastDash := true // suppress a leading separator
	for _, r := range strings.ToLower(text) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}

	if slug == "" {
		if claimDate.IsZero() {
			return fmt.Sprintf("claim-%d", time.Now().Unix())
		}
		return "claim-" + claimDate.Format("20060102")
	}

	if !claimDate.IsZero() {
		slug += "-" + claimDate.Format("20060102")
	}
	return slug
}
