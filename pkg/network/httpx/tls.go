package httpx

import "golang.org/x/crypto/acme/autocert"

const defaultCertCache = "certs"

// newCertManager returns a Let's Encrypt manager that keeps issued
// certificates in cacheDir. A non-empty host is the only name it will
// request certificates for.
func newCertManager(host, cacheDir string) *autocert.Manager {
	if cacheDir == "" {
		cacheDir = defaultCertCache
	}
	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
		Cache:  autocert.DirCache(cacheDir),
	}
	if host != "" {
		m.HostPolicy = autocert.HostWhitelist(host)
	}
	return m
}
