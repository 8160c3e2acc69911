// Package hostname normalises request Host headers into cache and lookup keys.
package hostname

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Normalizer maps a raw Host header to a key.
type Normalizer func(host string) string

// ExtractDomainWithSubdomain lower-cases host and strips the port and any trailing dot,
// keeping every label: "Shop.Example.com:8443" -> "shop.example.com".
func ExtractDomainWithSubdomain(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	return strings.TrimSuffix(host, ".")
}

// ExtractRootDomain reduces host to its registrable domain using the public suffix list:
// "a.shop.example.co.uk" -> "example.co.uk". IP literals, localhost and hosts that are
// themselves a public suffix are returned in their subdomain form.
func ExtractRootDomain(host string) string {
	domain := ExtractDomainWithSubdomain(host)
	if domain == "" || net.ParseIP(domain) != nil || !strings.Contains(domain, ".") {
		return domain
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return domain
	}
	return root
}

// ForMode returns the normalizer for a HOST_CACHE_KEY_MODE value.
func ForMode(mode string) Normalizer {
	if mode == "root" {
		return ExtractRootDomain
	}
	return ExtractDomainWithSubdomain
}
