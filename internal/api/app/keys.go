package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// InitSigningKeys creates the KeyManager that signs and verifies every token.
//
// With SIGNING_KEY_FILE set the Ed25519 keys are read from that file, which
// is created on first start, so tokens survive restarts. Without it keys are
// generated in memory and every token becomes invalid when the process exits.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{Issuer: cfg.Issuer, NumKeys: cfg.NumKeys}

	if cfg.SigningKeyFile != "" {
		km, err := jwtx.NewFileKeyManager(cfg.SigningKeyFile, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing keys: %w", err)
		}
		logger.Info("signing keys loaded",
			"path", cfg.SigningKeyFile,
			"num_keys", km.NumSigners(),
			"issuer", cfg.Issuer,
		)
		return km, nil
	}

	km, err := jwtx.NewEphemeralKeyManager(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing keys: %w", err)
	}
	logger.Info("generated ephemeral signing keys", "num_keys", km.NumSigners(), "issuer", cfg.Issuer)
	logger.Warn("all existing tokens are now invalid because signing keys are regenerated on startup")
	return km, nil
}
