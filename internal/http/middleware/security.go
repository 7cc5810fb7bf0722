// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which hardens every response of the
// transparency API — JSON endpoints and PDF downloads alike. The API serves
// no HTML, so there is no Content-Security-Policy here; the baseline headers
// stop MIME sniffing, framing, and referrer leakage, and HSTS is available
// for deployments where TLS terminates in front of the service.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security, but only on requests that
	// actually arrived over HTTPS (directly or proxy-terminated). Leave off
	// for localhost or plain-HTTP proxy hops.
	EnableHSTS bool

	// HSTSMaxAge is the HSTS lifetime; non-positive values fall back to 180
	// days.
	HSTSMaxAge time.Duration

	// NoStore adds Cache-Control: no-store (plus legacy Pragma/Expires) for
	// responses that must never be cached.
	NoStore bool

	// EnablePolicy sends the browser feature policies
	// (Permissions-Policy, X-Permitted-Cross-Domain-Policies). Harmless for
	// non-browser clients.
	EnablePolicy bool
}

// SecurityHeaders returns a middleware that attaches the configured security
// headers to every response. It always sets X-Content-Type-Options: nosniff,
// X-Frame-Options: DENY, and Referrer-Policy: no-referrer; the rest follow
// SecurityOptions. When an X-Request-ID is present it is added to
// Access-Control-Expose-Headers so browser clients can correlate failures
// with server logs.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hstsValue := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			cur := h.Get(hdr)
			if cur == "" {
				h.Set(hdr, "X-Request-ID")
			} else if !strings.Contains(cur, "X-Request-ID") {
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request used HTTPS either directly (r.TLS) or
// via a reverse proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
