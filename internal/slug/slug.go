// Package slug derives deterministic, filesystem-safe names for packages and
// their destination asset folders.
package slug

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Make lowercases the value and reduces it to [a-z0-9-], collapsing runs of
// other characters into single hyphens. The result is stable across runs,
// which is what makes destination asset paths reproducible.
func Make(value string) string {
	value = lower.String(strings.TrimSpace(value))

	var b strings.Builder
	b.Grow(len(value))
	lastHyphen := true
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// PackageFolder returns the per-package destination folder name a package's
// imported assets live under: slug(author-packageName).
func PackageFolder(author, packageName string) string {
	combined := strings.TrimSpace(author)
	if combined != "" {
		combined += "-"
	}
	combined += strings.TrimSpace(packageName)
	folder := Make(combined)
	if folder == "" {
		return "imported-pack"
	}
	return folder
}
