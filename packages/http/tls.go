package http

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
)

// LoadTLSConfig builds a client TLS configuration from the PEM files named
// in cfg. It returns nil when cfg is empty and verification is on.
func LoadTLSConfig(fs afero.Fs, cfg config.TLS, rejectUnauthorized bool) (*tls.Config, error) {
	if cfg.IsZero() && rejectUnauthorized {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: !rejectUnauthorized, //nolint:gosec // opt-in via rejectUnauthorized=false
	}

	if cfg.CertFile != "" || cfg.KeyFile != "" {
		cert, err := loadKeyPair(fs, cfg.CertFile, cfg.KeyFile, cfg.Passphrase)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		caPEM, err := afero.ReadFile(fs, cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("ca file %s: no certificates found", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if len(cfg.Ciphers) > 0 {
		suites, err := CipherSuites(cfg.Ciphers)
		if err != nil {
			return nil, err
		}
		tlsConfig.CipherSuites = suites
	}

	return tlsConfig, nil
}

func loadKeyPair(fs afero.Fs, certFile, keyFile, passphrase string) (tls.Certificate, error) {
	if certFile == "" || keyFile == "" {
		return tls.Certificate{}, fmt.Errorf("client certificate requires both cert and key files")
	}
	certPEM, err := afero.ReadFile(fs, certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read cert file: %w", err)
	}
	keyPEM, err := afero.ReadFile(fs, keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read key file: %w", err)
	}

	if passphrase != "" {
		keyPEM, err = decryptKey(keyPEM, passphrase)
		if err != nil {
			return tls.Certificate{}, err
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load client certificate: %w", err)
	}
	return cert, nil
}

// decryptKey decrypts a legacy RFC 1423 encrypted PEM key. Unencrypted keys
// are returned unchanged.
func decryptKey(keyPEM []byte, passphrase string) ([]byte, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("key file: no PEM block found")
	}
	//nolint:staticcheck // RFC 1423 is what passphrase-protected PEM keys use
	if !x509.IsEncryptedPEMBlock(block) {
		return keyPEM, nil
	}
	//nolint:staticcheck
	der, err := x509.DecryptPEMBlock(block, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("decrypt key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}

// CipherSuites maps cipher suite names to IDs. Entries may themselves be
// colon separated lists.
func CipherSuites(names []string) ([]uint16, error) {
	known := make(map[string]uint16)
	for _, s := range tls.CipherSuites() {
		known[s.Name] = s.ID
	}
	for _, s := range tls.InsecureCipherSuites() {
		known[s.Name] = s.ID
	}

	var ids []uint16
	for _, entry := range names {
		for _, name := range strings.Split(entry, ":") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			id, ok := known[name]
			if !ok {
				return nil, fmt.Errorf("unknown cipher suite %q", name)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
