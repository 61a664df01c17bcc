package keyexch

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
)

var (
	ErrBadCiphertext = errors.New("malformed ciphertext")
	ErrBadPadding    = errors.New("bad padding")
)

// SessionCipher encrypts and decrypts messages under a session key.
// The key material is SHA-256 of the session key, so any key length maps to
// a valid AES-256 key. Output is base64(iv || ciphertext), which is safe to
// carry through the text framing layer.
type SessionCipher struct {
	block cipher.Block
	rnd   random.Random
}

// NewSessionCipher creates a cipher bound to the given session key
func NewSessionCipher(sessionKey []byte, rnd random.Random) (*SessionCipher, error) {
	sum := sha256.Sum256(sessionKey)
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	return &SessionCipher{block: block, rnd: rnd}, nil
}

// Encrypt returns the wire form of plaintext: a fresh IV per message,
// AES-CBC with PKCS#7 padding, base64 encoded
func (c *SessionCipher) Encrypt(plaintext string) string {
	raw := pad([]byte(plaintext), aes.BlockSize)
	iv := c.rnd.Bytes(aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(raw))
	copy(out, iv)
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], raw)
	return base64.StdEncoding.EncodeToString(out)
}

// Decrypt reverses Encrypt. Any decode or padding failure is reported so the
// caller can treat it as a transport error.
func (c *SessionCipher) Decrypt(enc string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadCiphertext, err)
	}
	// Need at least the IV plus one padded block
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", ErrBadCiphertext
	}
	iv, ct := data[:aes.BlockSize], data[aes.BlockSize:]
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(pt, ct)
	return unpad(pt)
}

// pad applies PKCS#7 padding: always at least one byte, each padding byte
// holding the padding length
func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte) (string, error) {
	if len(b) == 0 {
		return "", ErrBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return "", ErrBadPadding
	}
	return string(b[:len(b)-n]), nil
}
