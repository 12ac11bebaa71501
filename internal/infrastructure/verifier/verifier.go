package verifier

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/pkg/config"
)

// SkipSentinel is the signature value that bypasses verification when the
// allow_skip_verification config flag is set. Used by the local webhook
// simulator against sandbox deployments.
const SkipSentinel = "SKIP_VERIFICATION"

type Verifier struct {
	publicKey *ecdsa.PublicKey
	allowSkip bool
	logger    zerolog.Logger
}

// New builds a webhook verifier from config. A malformed configured key is a
// startup error rather than a silent per-request rejection. With no key
// configured the verifier accepts everything, which is the sandbox posture.
func New(cfg config.WebhookConfig, logger zerolog.Logger) (*Verifier, error) {
	v := &Verifier{
		allowSkip: cfg.AllowSkipVerification,
		logger:    logger.With().Str("component", "webhook_verifier").Logger(),
	}

	if cfg.PublicKey == "" {
		return v, nil
	}

	pub, err := parsePublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("parsing webhook public key: %w", err)
	}
	v.publicKey = pub

	return v, nil
}

var _ interfaces.WebhookVerifier = (*Verifier)(nil)

// Verify checks an ECDSA/SHA-256 signature over timestamp + "." + rawBody.
// The raw request bytes are signed, never a re-serialization of parsed JSON:
// re-serializing can reorder keys or alter whitespace and invalidate the
// signature. Any fault while verifying yields false, never an error.
func (v *Verifier) Verify(rawBody []byte, signature, timestamp string) bool {
	if v.publicKey == nil {
		v.logger.Debug().Msg("No webhook public key configured, accepting event")
		return true
	}

	if v.allowSkip && signature == SkipSentinel {
		v.logger.Warn().Msg("Webhook verification bypassed by explicit skip sentinel")
		return true
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		v.logger.Debug().Err(err).Msg("Webhook signature is not valid base64")
		return false
	}

	message := make([]byte, 0, len(timestamp)+1+len(rawBody))
	message = append(message, timestamp...)
	message = append(message, '.')
	message = append(message, rawBody...)

	digest := sha256.Sum256(message)
	return ecdsa.VerifyASN1(v.publicKey, digest[:], sig)
}

// parsePublicKey accepts a PEM-framed key or a bare base64 body as it
// typically arrives through an environment variable, with newlines escaped.
func parsePublicKey(key string) (*ecdsa.PublicKey, error) {
	if !strings.Contains(key, "-----BEGIN PUBLIC KEY-----") {
		body := strings.ReplaceAll(key, `\n`, "\n")
		key = "-----BEGIN PUBLIC KEY-----\n" + body + "\n-----END PUBLIC KEY-----"
	}

	block, _ := pem.Decode([]byte(key))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("expected ECDSA public key, got %T", parsed)
	}

	return pub, nil
}
