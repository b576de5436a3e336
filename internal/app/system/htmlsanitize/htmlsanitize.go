// Package htmlsanitize cleans blog content before it is stored.
// It uses bluemonday to strip dangerous HTML while preserving the
// formatting the blog composer produces.
package htmlsanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared bluemonday policy for blog content.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// Extra formatting the composer emits beyond the UGC baseline.
		policy.AllowElements("u", "s", "sub", "sup", "mark", "figure", "figcaption")
		policy.AllowElements("table", "thead", "tbody", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		policy.AllowAttrs("class").OnElements("p", "figure", "table", "th", "td")
	})
	return policy
}

// Sanitize cleans HTML input, removing potentially dangerous elements
// and attributes while keeping safe formatting like headings, lists,
// links, images, and tables.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}
