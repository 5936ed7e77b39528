// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// SecureHeaders adds security-related HTTP headers to every response.
// imageBase is the public URL of the image storage; its origin is added
// to the img-src directive of the content security policy. Highlighted
// code carries inline styles, so style-src allows them.
func SecureHeaders(imageBase string) func(http.Handler) http.Handler {
	csp := ContentSecurityPolicy(imageBase)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Content-Security-Policy", csp)

			next.ServeHTTP(w, r)
		})
	}
}

// ContentSecurityPolicy builds the policy for the public pages.
func ContentSecurityPolicy(imageBase string) string {
	img := "'self'"
	if u, err := url.Parse(imageBase); err == nil && u.Scheme != "" && u.Host != "" {
		img += " " + u.Scheme + "://" + u.Host
	}
	return strings.Join([]string{
		"default-src 'self'",
		"img-src " + img,
		"style-src 'self' 'unsafe-inline'",
		"script-src 'none'",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'self'",
	}, "; ")
}
