package httpx

import (
	"context"
	"testing"

	"golang.org/x/crypto/acme/autocert"
)

func TestCertManager(t *testing.T) {
	m := newCertManager("relay.example.com", "")
	if m.Cache != autocert.DirCache(defaultCertCache) {
		t.Errorf("unexpected cache %v", m.Cache)
	}
	if err := m.HostPolicy(context.Background(), "relay.example.com"); err != nil {
		t.Errorf("own host refused: %v", err)
	}
	if err := m.HostPolicy(context.Background(), "other.example.com"); err == nil {
		t.Errorf("foreign host allowed")
	}
	if m := newCertManager("", "/tmp/c"); m.HostPolicy != nil {
		t.Errorf("no host means no policy")
	}
}
