// Package testutil holds helpers shared by package tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteSelfSignedCert writes a fresh self-signed ECDSA key pair valid for
// localhost and 127.0.0.1. Each call uses a new serial number.
func WriteSelfSignedCert(t testing.TB, certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		t.Fatalf("rand.Int() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"deckshare test"},
			CommonName:   "localhost",
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}

	// Write to temp names first so watchers never see a half-written pair.
	writeAtomic(t, certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}), 0644)
	writeAtomic(t, keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600)
}

func writeAtomic(t testing.TB, path string, data []byte, perm os.FileMode) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Rename(%s) error = %v", path, err)
	}
}

// PluginDir creates a plugin directory layout under a temp dir: certs/ with
// a key pair named certName/keyName, and web/ with an index.html. Empty
// certName skips certificate generation.
func PluginDir(t testing.TB, certName, keyName string) string {
	t.Helper()

	dir := t.TempDir()
	certs := filepath.Join(dir, "certs")
	web := filepath.Join(dir, "web")
	for _, d := range []string{certs, web} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("MkdirAll(%s) error = %v", d, err)
		}
	}
	if err := os.WriteFile(filepath.Join(web, "index.html"), []byte("<html>deckshare</html>"), 0644); err != nil {
		t.Fatalf("WriteFile(index.html) error = %v", err)
	}
	if certName != "" {
		WriteSelfSignedCert(t, filepath.Join(certs, certName), filepath.Join(certs, keyName))
	}
	return dir
}
