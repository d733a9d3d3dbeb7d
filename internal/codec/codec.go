// Package codec keeps sensitive fields unreadable at rest. Values are
// sealed as Fernet tokens so rows written by earlier tooling with the same
// key stay readable.
package codec

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"

	"medexpenses/internal/apperr"
)

// ErrInvalidKey is returned when the configured key is absent or malformed.
var ErrInvalidKey = errors.New("codec: invalid encryption key")

// Codec encrypts and decrypts field values with one process-wide key.
type Codec struct {
	key  *fernet.Key
	keys []*fernet.Key
}

// NewCodec decodes key (URL-safe base64, standard base64 or hex of 32 bytes).
func NewCodec(key string) (*Codec, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	k, err := fernet.DecodeKey(strings.TrimSpace(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Codec{key: k, keys: []*fernet.Key{k}}, nil
}

// GenerateKey returns a fresh key in the encoding NewCodec accepts.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return k.Encode(), nil
}

// Encrypt seals plaintext. Two calls with the same input yield different tokens.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt opens a token produced by Encrypt under the same key.
func (c *Codec) Decrypt(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(unwrapLegacy(token)), 0, c.keys)
	if msg == nil {
		return "", fmt.Errorf("%w: token rejected under current key", apperr.ErrDecryptionFailure)
	}
	return string(msg), nil
}

// unwrapLegacy strips the b'...' bytes literal some stored tokens carry.
func unwrapLegacy(token string) string {
	t := strings.TrimSpace(token)
	if len(t) >= 3 && t[0] == 'b' && (t[1] == '\'' || t[1] == '"') && t[len(t)-1] == t[1] {
		return t[2 : len(t)-1]
	}
	return t
}

// Digest is the one-way SHA-256 hex digest applied to passwords before sealing.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SealPassword digests the password and encrypts the digest.
func (c *Codec) SealPassword(password string) (string, error) {
	return c.Encrypt(Digest(password))
}

// MatchPassword reports whether password digests to the value sealed in stored.
func (c *Codec) MatchPassword(stored, password string) (bool, error) {
	digest, err := c.Decrypt(stored)
	if err != nil {
		return false, err
	}
	want := Digest(password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(want)) == 1, nil
}

// BlindIndex is a deterministic lookup value for an encrypted field, so
// uniqueness can be enforced without storing plaintext.
func BlindIndex(value string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(value))))
	return hex.EncodeToString(sum[:])
}
