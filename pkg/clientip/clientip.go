// Package clientip resolves the address rate limits are keyed on.
package clientip

import (
	"net/http"
	"net/netip"
	"strings"
)

// RealClientIP returns the peer address of r without its port. Proxy headers
// such as X-Forwarded-For are ignored because clients can forge them; deploy
// behind a proxy that rewrites RemoteAddr if one is needed.
func RealClientIP(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().WithZone("").String()
	}
	if addr, err := netip.ParseAddr(remote); err == nil {
		return addr.WithZone("").String()
	}
	return remote
}
