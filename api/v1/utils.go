package v1

import (
	"net/netip"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// proxyHeaders are checked in order after X-Forwarded-For.
var proxyHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Client-IP",
}

// getClientIP extracts the real client address, preferring public IPs from
// reverse-proxy headers over the socket peer. Collectors almost always sit
// behind a proxy, so the remote address is usually the proxy itself.
func getClientIP(c *fiber.Ctx) string {
	if ip := firstPublicIP(strings.Split(c.Get("X-Forwarded-For"), ",")); ip != "" {
		return ip
	}

	for _, header := range proxyHeaders {
		if ip := firstPublicIP([]string{c.Get(header)}); ip != "" {
			return ip
		}
	}

	if forwarded := c.Get("Forwarded"); forwarded != "" {
		if ip := firstPublicIP(forwardedFor(forwarded)); ip != "" {
			return ip
		}
	}

	if ip := firstPublicIP([]string{c.IP()}); ip != "" {
		return ip
	}

	return "127.0.0.1"
}

// firstPublicIP returns the first public address in the candidate list,
// preferring IPv4 over IPv6 when both appear.
func firstPublicIP(candidates []string) string {
	var v6Fallback string

	for _, raw := range candidates {
		addr, ok := parseAddr(raw)
		if !ok || !isPublic(addr) {
			continue
		}
		if addr.Is4() {
			return addr.String()
		}
		if v6Fallback == "" {
			v6Fallback = addr.String()
		}
	}

	return v6Fallback
}

func parseAddr(raw string) (netip.Addr, bool) {
	clean := strings.Trim(strings.TrimSpace(raw), `"`)
	if clean == "" {
		return netip.Addr{}, false
	}

	if percent := strings.Index(clean, "%"); percent != -1 {
		clean = clean[:percent]
	}

	if addrPort, err := netip.ParseAddrPort(clean); err == nil {
		return addrPort.Addr().Unmap(), true
	}

	clean = strings.TrimSuffix(strings.TrimPrefix(clean, "["), "]")
	if addr, err := netip.ParseAddr(clean); err == nil {
		return addr.Unmap(), true
	}

	return netip.Addr{}, false
}

func isPublic(addr netip.Addr) bool {
	return !(addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified())
}

// forwardedFor pulls the for= values out of an RFC 7239 Forwarded header.
func forwardedFor(header string) []string {
	var candidates []string

	for _, entry := range strings.Split(header, ",") {
		for _, part := range strings.Split(entry, ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(strings.ToLower(part), "for=") {
				candidates = append(candidates, part[len("for="):])
			}
		}
	}

	return candidates
}
