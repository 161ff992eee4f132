// internal/adapter/media/resolver.go

package media

import (
	"strings"
)

// URLResolver turns stored media references into displayable URLs.
// Absolute and inline references pass through, relative ones are joined to BaseURL.
type URLResolver struct {
	baseURL string
}

// NewURLResolver creates a resolver rooted at baseURL
func NewURLResolver(baseURL string) *URLResolver {
	return &URLResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ResolveURL implements hotplace.MediaResolver
func (r *URLResolver) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "blob:") {
		return ref
	}

	if r.baseURL == "" {
		return ref
	}
	return r.baseURL + "/" + strings.TrimLeft(ref, "/")
}
