package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"neuroease/pkg/requestcontext"
)

const maxDeviceLen = 128

// ClientMetadata records the caller's IP and a device summary parsed from
// User-Agent in the request context. Audit events and failure logs read them.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), ClientIPFromRequest(r))
		ctx = requestcontext.WithClientDevice(ctx, DeviceFromUserAgent(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest resolves the client IP, preferring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}

// DeviceFromUserAgent summarises a User-Agent as "<browser> on <os>
// (desktop|mobile)". Crawlers become "bot:<name>".
func DeviceFromUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "unknown"
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	if name == "" {
		name = "unknown"
	}
	if ua.Bot() {
		return truncate("bot:" + name)
	}

	os := ua.OS()
	if os == "" {
		os = "unknown"
	}
	kind := "desktop"
	if ua.Mobile() {
		kind = "mobile"
	}
	return truncate(name + " on " + os + " (" + kind + ")")
}

func truncate(s string) string {
	if len(s) > maxDeviceLen {
		return s[:maxDeviceLen]
	}
	return s
}
