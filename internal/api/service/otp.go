package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount = 10
	secretSize      = 20 // bytes, 32 base32 characters
)

// Codes stay valid four steps either side of now, so SMS delivery delays
// don't lock users out.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      4,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateSecret creates a new TOTP secret and its otpauth:// URI. Nothing
// is stored.
func GenerateSecret(issuer, account string) (domain.MFASetup, error) {
	if issuer == "" {
		issuer = "App"
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpOpts.Period,
		SecretSize:  secretSize,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return domain.MFASetup{}, fmt.Errorf("generate totp secret: %w", err)
	}
	return domain.MFASetup{Secret: key.Secret(), URI: key.URL()}, nil
}

// GenerateCode returns the code for secret at t.
func GenerateCode(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(normalizeSecret(secret), t, totpOpts)
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}
	return code, nil
}

// ValidateCode reports whether code matches secret around t.
func ValidateCode(secret, code string, t time.Time) bool {
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, normalizeSecret(secret), t, totpOpts)
	return err == nil && ok
}

// GenerateBackupCodes returns ten fresh codes shaped like 12345-67890.
func GenerateBackupCodes() ([]string, error) {
	codes := make([]string, backupCodeCount)
	for i := range codes {
		c, err := cryptox.GenerateGroupedDigits(2, 5, "-")
		if err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		codes[i] = c
	}
	return codes, nil
}

// hashBackupCode is the form backup codes are stored in.
func hashBackupCode(code string) string {
	return cryptox.FingerprintToken(strings.TrimSpace(code))
}

func normalizeSecret(secret string) string {
	return strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
}
