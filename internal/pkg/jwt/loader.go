// internal/pkg/jwt/loader.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

type Manager struct {
	Generator *Generator
	Verifier  *Verifier
}

func LoadAndBuild(cfg Config) (*Manager, error) {
	var (
		priv *rsa.PrivateKey
		pub  *rsa.PublicKey
		err  error
	)

	if cfg.PrivPath == "" && cfg.PubPath == "" {
		priv, pub, err = GenerateEphemeralKey()
		if err != nil {
			return nil, err
		}
	} else {
		priv, err = LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivPath, err)
		}

		pub, err = LoadRSAPublicKeyFromPEM(cfg.PubPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PubPath, err)
		}
	}

	gen := NewGenerator(priv, cfg.Issuer, cfg.Audience, cfg.KID, cfg.TTL)
	ver := NewVerifier(pub, cfg.Issuer, cfg.Audience)

	return &Manager{
		Generator: gen,
		Verifier:  ver,
	}, nil
}
