// Package keyexch implements the per-connection key exchange: the client
// sends an RSA public key as its first bytes on the socket, the server
// answers with a freshly generated symmetric session key encrypted under
// that public key, and both sides then use an AES session cipher for any
// message tagged as encrypted.
package keyexch

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
)

const (
	// rsaBits is the client keypair size. The frame sizes below only hold
	// for this modulus size, so it is part of the protocol.
	rsaBits = 1024

	// SessionKeySize is the length of the symmetric session key in bytes
	SessionKeySize = 24

	// PublicKeyFrameSize is the exact size of the client's first message:
	// base64 of the PKCS#1 DER encoding of a 1024-bit public key
	PublicKeyFrameSize = 188

	// SessionKeyFrameSize is the exact size of the server's reply:
	// base64 of the 128-byte RSA ciphertext of the session key
	SessionKeyFrameSize = 172
)

var (
	ErrBadPublicKey = errors.New("malformed client public key frame")
	ErrBadKeyFrame  = errors.New("malformed session key frame")
)

// NewSessionKey generates a fresh symmetric session key
func NewSessionKey(rnd random.Random) []byte {
	return rnd.Bytes(SessionKeySize)
}

// ParsePublicKey decodes the client's fixed-size public key frame
func ParsePublicKey(frame []byte) (*rsa.PublicKey, error) {
	if len(frame) != PublicKeyFrameSize {
		return nil, ErrBadPublicKey
	}
	der, err := base64.StdEncoding.DecodeString(string(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPublicKey, err)
	}
	pub, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPublicKey, err)
	}
	if pub.Size() != rsaBits/8 {
		return nil, ErrBadPublicKey
	}
	return pub, nil
}

// EncryptSessionKey encrypts the session key under the client's public key
// and returns the fixed-size reply frame
func EncryptSessionKey(pub *rsa.PublicKey, sessionKey []byte) ([]byte, error) {
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, pub, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt session key: %w", err)
	}
	frame := []byte(base64.StdEncoding.EncodeToString(ct))
	if len(frame) != SessionKeyFrameSize {
		return nil, fmt.Errorf("unexpected session key frame size %d", len(frame))
	}
	return frame, nil
}

// ClientKeys is the client half of the exchange. The server never holds one;
// it exists for the client library and for tests driving a full handshake.
type ClientKeys struct {
	priv *rsa.PrivateKey
}

// GenerateClientKeys creates a fresh client keypair
func GenerateClientKeys() (*ClientKeys, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaBits)
	if err != nil {
		return nil, err
	}
	return &ClientKeys{priv: priv}, nil
}

// PublicKeyFrame returns the fixed-size frame the client sends first
func (k *ClientKeys) PublicKeyFrame() []byte {
	der := x509.MarshalPKCS1PublicKey(&k.priv.PublicKey)
	return []byte(base64.StdEncoding.EncodeToString(der))
}

// DecryptSessionKey recovers the session key from the server's reply frame
func (k *ClientKeys) DecryptSessionKey(frame []byte) ([]byte, error) {
	if len(frame) != SessionKeyFrameSize {
		return nil, ErrBadKeyFrame
	}
	ct, err := base64.StdEncoding.DecodeString(string(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadKeyFrame, err)
	}
	key, err := rsa.DecryptPKCS1v15(rand.Reader, k.priv, ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadKeyFrame, err)
	}
	return key, nil
}
