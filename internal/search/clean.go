package search

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	whitespace  = regexp.MustCompile(`\s+`)
)

// cleanText strips markup and entities from provider text.
func cleanText(value string) string {
	if value == "" {
		return ""
	}
	stripped := stripPolicy.Sanitize(value)
	stripped = html.UnescapeString(stripped)
	return strings.TrimSpace(whitespace.ReplaceAllString(stripped, " "))
}

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "oc"}

// NormalizeURL is the identity used to de-duplicate articles across variants.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	return u.String()
}
