// Package network provides network-related utilities.
package network

import (
	"net/http"
	"strings"
)

// ClientIP extracts the client IP address from the request. It checks
// X-Forwarded-For and X-Real-IP for reverse proxy setups and falls back
// to RemoteAddr with the port stripped. The result is recorded in
// session rows, audit events, and captured lead metadata.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First address in the chain is the originating client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
