package audit

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// RequestContext is the part of an HTTP request an audit entry keeps.
type RequestContext struct {
	Method        string
	URL           string // path and query as received
	RouteTemplate string // e.g. /1/users/:userId
	RoutePrefix   string // e.g. /1/users
	ActorID       string
}

var wildcard = regexp.MustCompile(`\{([^}.]+)(\.\.\.)?\}`)

// FromRequest captures r. The route template comes from the ServeMux
// pattern that matched, so it is only set for requests served by a mux.
func FromRequest(r *http.Request, prefix string) RequestContext {
	actor, _ := httpx.UserIDFromContext(r.Context())
	return RequestContext{
		Method:        r.Method,
		URL:           r.URL.RequestURI(),
		RouteTemplate: NormalizePattern(r.Pattern),
		RoutePrefix:   prefix,
		ActorID:       actor,
	}
}

// NormalizePattern turns a ServeMux pattern such as
// "PATCH /1/users/{userId}" into "/1/users/:userId".
func NormalizePattern(pattern string) string {
	if _, path, ok := strings.Cut(pattern, " "); ok {
		pattern = path
	}
	if i := strings.Index(pattern, "/"); i > 0 {
		pattern = pattern[i:] // drop a host
	}
	return wildcard.ReplaceAllStringFunc(pattern, func(m string) string {
		sub := wildcard.FindStringSubmatch(m)
		if sub[2] != "" {
			return "*" + sub[1]
		}
		return ":" + sub[1]
	})
}
