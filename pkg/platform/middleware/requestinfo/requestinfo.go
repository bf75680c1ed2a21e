// Package requestinfo captures where a request came from — full URL,
// client IP, and a normalized User-Agent — into the context, and exposes
// the source resolver the audit builder reads them back through. Outside
// of a request-handling context the resolver reports a console runtime.
package requestinfo

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type (
	urlKey struct{}
	ipKey  struct{}
	uaKey  struct{}
)

// Capture records the request's full URL, client IP, and User-Agent in
// the context. Apply it early in the chain, before any handler that may
// emit audit records.
func Capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, urlKey{}, fullURL(r))
		ctx = context.WithValue(ctx, ipKey{}, ClientIPFromRequest(r))
		ctx = context.WithValue(ctx, uaKey{}, NormalizeUserAgent(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// URL retrieves the full request URL from the context. Empty outside a
// request-handling context.
func URL(ctx context.Context) string {
	if u, ok := ctx.Value(urlKey{}).(string); ok {
		return u
	}
	return ""
}

// IP retrieves the client IP address from the context.
func IP(ctx context.Context) string {
	if ip, ok := ctx.Value(ipKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the normalized User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(uaKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithRequestInfo injects request metadata into a context. Useful for
// service unit tests that don't run the full HTTP middleware chain.
func WithRequestInfo(ctx context.Context, url, ip, ua string) context.Context {
	ctx = context.WithValue(ctx, urlKey{}, url)
	ctx = context.WithValue(ctx, ipKey{}, ip)
	ctx = context.WithValue(ctx, uaKey{}, ua)
	return ctx
}

// Resolver reads the captured request metadata back out of the context.
// It implements audit.SourceResolver: with no captured URL the runtime
// is a console and URL returns "console".
type Resolver struct{}

func (Resolver) Console(ctx context.Context) bool {
	return URL(ctx) == ""
}

func (Resolver) URL(ctx context.Context) string {
	if u := URL(ctx); u != "" {
		return u
	}
	return "console"
}

func (Resolver) IPAddress(ctx context.Context) string {
	return IP(ctx)
}

func (Resolver) UserAgent(ctx context.Context) string {
	return UserAgent(ctx)
}

func fullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// ClientIPFromRequest extracts the real client IP, handling proxies and
// load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" (or "[::1]:port" for IPv6); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}

	return "unknown"
}

// NormalizeUserAgent condenses a raw User-Agent header into a readable
// "Browser version (OS)" form. Unparseable strings pass through as-is.
func NormalizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	if os := ua.OS(); os != "" {
		return fmt.Sprintf("%s %s (%s)", name, version, os)
	}
	return fmt.Sprintf("%s %s", name, version)
}
