package utils

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/base64"
    "encoding/hex"
    "errors"
    "io"

    "golang.org/x/crypto/nacl/secretbox"
)

func SHA256Hex(s string) string {
    h := sha256.Sum256([]byte(s))
    return hex.EncodeToString(h[:])
}

// Cipher encrypts roster student IDs at rest. The key is derived from the
// ROSTER_SECRET env value, so the same deployment can round-trip exports.
type Cipher struct {
    key [32]byte
}

func NewCipher(secret string) *Cipher {
    c := &Cipher{}
    c.key = sha256.Sum256([]byte(secret))
    return c
}

func (c *Cipher) Encrypt(plain string) (string, error) {
    var nonce [24]byte
    if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
        return "", err
    }
    sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &c.key)
    return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
    raw, err := base64.StdEncoding.DecodeString(encoded)
    if err != nil {
        return "", err
    }
    if len(raw) < 24 {
        return "", errors.New("ciphertext too short")
    }
    var nonce [24]byte
    copy(nonce[:], raw[:24])
    plain, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
    if !ok {
        return "", errors.New("decryption failed")
    }
    return string(plain), nil
}
