package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ParseTrustedProxies parses CIDR ranges or bare IP addresses. Blank
// entries are skipped; the first malformed entry is an error.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	var networks []*net.IPNet

	for _, cidr := range entries {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		if !strings.Contains(cidr, "/") {
			ip := net.ParseIP(cidr)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy IP %q", cidr)
			}
			if ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}

		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}

	return networks, nil
}

// IsTrustedProxyIn checks if the given remote address is in the provided networks.
func IsTrustedProxyIn(remoteAddr string, trustedNetworks []*net.IPNet) bool {
	if len(trustedNetworks) == 0 {
		return false
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	for _, network := range trustedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetClientIPWithProxies extracts the client IP from a request. Forwarding
// headers are honoured only when the direct peer is a trusted proxy.
func GetClientIPWithProxies(r *http.Request, trustedNetworks []*net.IPNet) string {
	if IsTrustedProxyIn(r.RemoteAddr, trustedNetworks) {
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			if parsedIP := net.ParseIP(strings.TrimSpace(ip)); parsedIP != nil {
				return parsedIP.String()
			}
		}

		// Leftmost entry is the original client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if parsedIP := net.ParseIP(strings.TrimSpace(first)); parsedIP != nil {
				return parsedIP.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP returns a ClientIDFunc keyed on the resolved client IP.
func ClientIP(trustedNetworks []*net.IPNet) ClientIDFunc {
	return func(r *http.Request) string {
		return GetClientIPWithProxies(r, trustedNetworks)
	}
}
