package hostname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomainWithSubdomain(t *testing.T) {
	cases := map[string]string{
		"shop.example.com":       "shop.example.com",
		"Shop.Example.com:8443":  "shop.example.com",
		"a.b.example.com.":       "a.b.example.com",
		"localhost:4200":         "localhost",
		"127.0.0.1:8080":         "127.0.0.1",
		"[::1]:8080":             "::1",
		"[2001:db8::1]":          "2001:db8::1",
		"  tenant.example.org  ": "tenant.example.org",
		"":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractDomainWithSubdomain(in), in)
	}
}

func TestExtractRootDomain(t *testing.T) {
	cases := map[string]string{
		"shop.example.com":        "example.com",
		"a.shop.example.co.uk:80": "example.co.uk",
		"example.com":             "example.com",
		"localhost:4200":          "localhost",
		"10.0.0.7":                "10.0.0.7",
		"co.uk":                   "co.uk",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractRootDomain(in), in)
	}
}

func TestForMode(t *testing.T) {
	assert.Equal(t, "example.com", ForMode("root")("shop.example.com"))
	assert.Equal(t, "shop.example.com", ForMode("subdomain")("shop.example.com"))
	assert.Equal(t, "shop.example.com", ForMode("")("shop.example.com:80"))
}
