package verifier

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frogstop/payments/pkg/config"
)

func generateKeyPair(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return priv, pemKey
}

func sign(t *testing.T, priv *ecdsa.PrivateKey, timestamp string, body []byte) string {
	t.Helper()

	digest := sha256.Sum256([]byte(timestamp + "." + string(body)))
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(sig)
}

func TestVerify_ValidSignature(t *testing.T) {
	priv, pemKey := generateKeyPair(t)
	v, err := New(config.WebhookConfig{PublicKey: pemKey}, zerolog.Nop())
	require.NoError(t, err)

	body := []byte(`{"paymentId":"pay_1","status":"confirmed"}`)
	timestamp := "1714000000"

	assert.True(t, v.Verify(body, sign(t, priv, timestamp, body), timestamp))
}

func TestVerify_RejectsMutations(t *testing.T) {
	priv, pemKey := generateKeyPair(t)
	v, err := New(config.WebhookConfig{PublicKey: pemKey}, zerolog.Nop())
	require.NoError(t, err)

	body := []byte(`{"paymentId":"pay_1","status":"confirmed"}`)
	timestamp := "1714000000"
	signature := sign(t, priv, timestamp, body)

	mutatedBody := []byte(`{"paymentId":"pay_2","status":"confirmed"}`)
	assert.False(t, v.Verify(mutatedBody, signature, timestamp), "mutated body must fail")

	assert.False(t, v.Verify(body, signature, "1714000001"), "mutated timestamp must fail")

	raw, err := base64.StdEncoding.DecodeString(signature)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	mutatedSig := base64.StdEncoding.EncodeToString(raw)
	assert.False(t, v.Verify(body, mutatedSig, timestamp), "mutated signature must fail")
}

func TestVerify_MalformedSignatureEncoding(t *testing.T) {
	_, pemKey := generateKeyPair(t)
	v, err := New(config.WebhookConfig{PublicKey: pemKey}, zerolog.Nop())
	require.NoError(t, err)

	assert.False(t, v.Verify([]byte(`{}`), "not-base64!!!", "1714000000"))
	assert.False(t, v.Verify([]byte(`{}`), "", "1714000000"))
}

func TestVerify_NoKeyConfiguredAcceptsAll(t *testing.T) {
	v, err := New(config.WebhookConfig{}, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, v.Verify([]byte(`{}`), "", ""))
	assert.True(t, v.Verify([]byte(`{}`), "garbage", "1714000000"))
}

func TestVerify_SkipSentinel(t *testing.T) {
	priv, pemKey := generateKeyPair(t)

	gated, err := New(config.WebhookConfig{PublicKey: pemKey, AllowSkipVerification: true}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, gated.Verify([]byte(`{}`), SkipSentinel, "1714000000"))

	strict, err := New(config.WebhookConfig{PublicKey: pemKey}, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, strict.Verify([]byte(`{}`), SkipSentinel, "1714000000"),
		"sentinel must be rejected unless explicitly allowed")

	// The sentinel path must not weaken real verification.
	body := []byte(`{"status":"confirmed"}`)
	assert.True(t, gated.Verify(body, sign(t, priv, "1714000000", body), "1714000000"))
}

func TestNew_EnvStyleKeyWithoutPEMFraming(t *testing.T) {
	priv, pemKey := generateKeyPair(t)

	// Strip the framing and collapse to the escaped-newline form keys take on
	// inside environment variables.
	body := strings.TrimSpace(pemKey)
	body = strings.TrimPrefix(body, "-----BEGIN PUBLIC KEY-----")
	body = strings.TrimSuffix(body, "-----END PUBLIC KEY-----")
	envKey := strings.ReplaceAll(strings.TrimSpace(body), "\n", `\n`)

	v, err := New(config.WebhookConfig{PublicKey: envKey}, zerolog.Nop())
	require.NoError(t, err)

	raw := []byte(`{"paymentId":"pay_1"}`)
	assert.True(t, v.Verify(raw, sign(t, priv, "1714000000", raw), "1714000000"))
}

func TestNew_MalformedKey(t *testing.T) {
	_, err := New(config.WebhookConfig{PublicKey: "definitely not a key"}, zerolog.Nop())
	assert.Error(t, err)
}
