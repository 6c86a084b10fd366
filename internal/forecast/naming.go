package forecast

import (
	"strings"
	"unicode"
)

// Slug normalizes an index name to the forecast artifact naming convention.
// Lowercase, every run of non-alphanumeric characters collapsed to a single
// underscore, leading/trailing underscores trimmed. Both the batch generator
// and the API read path use this, so lookups are case- and spacing-insensitive
// ("NIFTY Auto" and "nifty  auto" resolve to the same artifact).
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := true // suppress a leading underscore
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ArtifactFilename returns the file name of the forecast artifact for an
// index name.
func ArtifactFilename(name string) string {
	return Slug(name) + ".csv"
}
