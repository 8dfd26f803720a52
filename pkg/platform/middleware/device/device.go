// Package device derives a human-readable device description from the
// User-Agent header so audit events can record which client performed an
// operation.
package device

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"anchorage/pkg/requestcontext"
)

// Middleware parses the User-Agent and stores the derived device name in the
// context. It should run after the metadata middleware so both raw and parsed
// forms are available.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ParseUserAgent(r.Header.Get("User-Agent"))
		ctx := requestcontext.WithDeviceName(r.Context(), name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDeviceName retrieves the parsed device description from the context.
func GetDeviceName(ctx context.Context) string {
	return requestcontext.DeviceName(ctx)
}

// ParseUserAgent converts a raw User-Agent string into a display name such as
// "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
