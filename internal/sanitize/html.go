// Package sanitize cleans user supplied rich text down to a safe HTML subset.
package sanitize

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	apperrors "github.com/spec-kit/bug-service/pkg/util/errorutil"
)

// DefaultMaxBytes bounds comment input when no limit is configured.
const DefaultMaxBytes = 64 * 1024

// Sanitizer strips scripts, event handlers and unknown markup while keeping
// formatting, links, lists, tables and images.
type Sanitizer struct {
	policy   *bluemonday.Policy
	maxBytes int
}

// NewSanitizer builds a sanitizer using the user-generated-content policy.
func NewSanitizer(maxBytes int) *Sanitizer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	policy := bluemonday.UGCPolicy()
	policy.RequireNoReferrerOnLinks(true)
	return &Sanitizer{policy: policy, maxBytes: maxBytes}
}

// Sanitize returns the cleaned body as HTML: text is entity-escaped, so "a & b" comes back
// as "a &amp; b". Input that is not valid UTF-8 or exceeds the size limit is rejected. Markup
// with nothing safe inside cleans to "", which callers treat as no comment.
func (s *Sanitizer) Sanitize(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", apperrors.NewSanitizationError("comment is not valid UTF-8", nil)
	}
	if len(raw) > s.maxBytes {
		return "", apperrors.NewSanitizationError("comment too large", map[string]any{
			"max_bytes": s.maxBytes,
			"size":      len(raw),
		})
	}

	return strings.TrimSpace(s.policy.Sanitize(raw)), nil
}
