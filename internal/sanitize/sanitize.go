// Package sanitize strips markup from client supplied free text.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes every HTML element from raw and returns plain text. Entities
// escaped by the policy are decoded again so "Tom & Jerry" survives intact.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(trimmed)))
}

// Texts applies Text to every element and drops the ones left empty.
func Texts(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if cleaned := Text(s); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
