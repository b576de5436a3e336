// internal/app/system/slug/slug.go

// Package slug derives URL-safe identifiers from blog titles.
//
// The same derivation runs in two places: here, authoritatively, when a
// blog is created, and in assets/js/app.js as a live preview while the
// author types. The two must stay in agreement.
package slug

import "strings"

// Make converts a title into its canonical slug: lowercase, with every
// run of non-alphanumeric characters collapsed into a single hyphen and
// no leading or trailing hyphens. An empty or all-symbol title yields
// the empty string; callers decide whether that is an error.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
