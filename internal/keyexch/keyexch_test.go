package keyexch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
)

func TestHandshakeRoundTrip(t *testing.T) {
	client, err := GenerateClientKeys()
	require.NoError(t, err)

	frame := client.PublicKeyFrame()
	assert.Len(t, frame, PublicKeyFrameSize)

	pub, err := ParsePublicKey(frame)
	require.NoError(t, err)

	sessionKey := NewSessionKey(random.New())
	require.Len(t, sessionKey, SessionKeySize)

	reply, err := EncryptSessionKey(pub, sessionKey)
	require.NoError(t, err)
	assert.Len(t, reply, SessionKeyFrameSize)

	recovered, err := client.DecryptSessionKey(reply)
	require.NoError(t, err)
	assert.Equal(t, sessionKey, recovered)
}

func TestHandshakeFrameSizesAreStable(t *testing.T) {
	// Frame sizes are protocol constants; every generated keypair must
	// produce identical sizes
	for i := 0; i < 3; i++ {
		client, err := GenerateClientKeys()
		require.NoError(t, err)
		assert.Len(t, client.PublicKeyFrame(), PublicKeyFrameSize)
	}
}

func TestParsePublicKeyRejectsMalformed(t *testing.T) {
	_, err := ParsePublicKey([]byte("too short"))
	assert.ErrorIs(t, err, ErrBadPublicKey)

	junk := []byte(strings.Repeat("A", PublicKeyFrameSize))
	_, err = ParsePublicKey(junk)
	assert.ErrorIs(t, err, ErrBadPublicKey)
}

func TestDecryptSessionKeyRejectsMalformed(t *testing.T) {
	client, err := GenerateClientKeys()
	require.NoError(t, err)

	_, err = client.DecryptSessionKey([]byte("short"))
	assert.ErrorIs(t, err, ErrBadKeyFrame)

	junk := []byte(strings.Repeat("!", SessionKeyFrameSize))
	_, err = client.DecryptSessionKey(junk)
	assert.ErrorIs(t, err, ErrBadKeyFrame)
}

func TestSessionCipherRoundTrip(t *testing.T) {
	key := NewSessionKey(random.New())
	c, err := NewSessionCipher(key, random.New())
	require.NoError(t, err)

	cases := []string{
		"",
		"A",
		"TPHold up the amount of fingers that represents your answer",
		"Vanswer one&answer two&the task text",
		"&&&",
		"exactly sixteen.",
		strings.Repeat("x", 99),
		"unicode ☃ text",
	}
	for _, tc := range cases {
		enc := c.Encrypt(tc)
		dec, err := c.Decrypt(enc)
		require.NoError(t, err, "case %q", tc)
		assert.Equal(t, tc, dec, "case %q", tc)
	}
}

func TestSessionCipherDistinctKeysDoNotInterop(t *testing.T) {
	rnd := random.New()
	a, err := NewSessionCipher(NewSessionKey(rnd), rnd)
	require.NoError(t, err)
	b, err := NewSessionCipher(NewSessionKey(rnd), rnd)
	require.NoError(t, err)

	enc := a.Encrypt("secret task")
	dec, err := b.Decrypt(enc)
	if err == nil {
		// CBC with wrong key usually fails padding, but can by chance
		// produce valid padding; it must never produce the plaintext
		assert.NotEqual(t, "secret task", dec)
	}
}

func TestSessionCipherRejectsGarbage(t *testing.T) {
	c, err := NewSessionCipher(NewSessionKey(random.New()), random.New())
	require.NoError(t, err)

	_, err = c.Decrypt("not base64 at all!!!")
	assert.ErrorIs(t, err, ErrBadCiphertext)

	// Valid base64 but too short to hold IV + one block
	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrBadCiphertext)
}

func TestPadUnpad(t *testing.T) {
	for n := 0; n < 40; n++ {
		in := strings.Repeat("a", n)
		padded := pad([]byte(in), 16)
		assert.Zero(t, len(padded)%16)
		assert.Greater(t, len(padded), len(in))
		out, err := unpad(padded)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	_, err := unpad([]byte{})
	assert.ErrorIs(t, err, ErrBadPadding)
	_, err = unpad([]byte{0})
	assert.ErrorIs(t, err, ErrBadPadding)
	_, err = unpad([]byte{1, 2, 3, 17})
	assert.ErrorIs(t, err, ErrBadPadding)
}
