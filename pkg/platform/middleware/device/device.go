// Package device derives a human-readable device name from the User-Agent.
// Audit events record it as actor context ("Chrome on Linux"), which is what
// compliance reviewers want to see instead of a raw UA string.
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"origo/pkg/requestcontext"
)

// Middleware parses the User-Agent header and stores the device display name
// in the context. Runs after metadata.ClientMetadata, which captures the raw
// header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := DisplayName(r.Header.Get("User-Agent"))
		ctx := requestcontext.WithDeviceName(r.Context(), name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DisplayName renders a User-Agent as "Browser on OS". Unknown agents (curl,
// scripts, empty headers) fall back to the tool name or "unknown device".
func DisplayName(rawUA string) string {
	if rawUA == "" {
		return "unknown device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "unknown device"
	}
}
