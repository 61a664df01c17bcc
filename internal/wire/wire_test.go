package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
	"github.com/nitzanf/fakergame-go/internal/keyexch"
)

func TestPlainRoundTrip(t *testing.T) {
	cases := []string{
		"Y",
		"RY",
		"Uplayer one",
		"Lalice&bob&carol&dave",
		strings.Repeat("x", MaxPlainPayload),
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, tc))

		got, err := ReadFrame(&buf)
		require.NoError(t, err, "case %q", tc)
		assert.Equal(t, tc, got, "case %q", tc)
	}
}

func TestPlainWireFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, "Y"))
	assert.Equal(t, "01Y", buf.String())

	buf.Reset()
	require.NoError(t, WriteFrame(&buf, "RY"))
	assert.Equal(t, "02RY", buf.String())
}

func TestWriteFrameRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteFrame(&buf, ""), ErrPayloadSize)
	assert.ErrorIs(t, WriteFrame(&buf, strings.Repeat("x", MaxPlainPayload+1)), ErrPayloadSize)
	assert.Zero(t, buf.Len())
}

func TestReadFrameMalformedLength(t *testing.T) {
	_, err := ReadFrame(strings.NewReader("xxjunk"))
	assert.ErrorIs(t, err, ErrMalformedLength)

	_, err = ReadFrame(strings.NewReader("00"))
	assert.ErrorIs(t, err, ErrMalformedLength)
}

func TestReadFrameShortRead(t *testing.T) {
	// Length prefix promises more bytes than arrive
	_, err := ReadFrame(strings.NewReader("05ab"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadFrame(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}

func TestEncryptedSentinelBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEncryptedFrame(&buf, "abcdef"))
	assert.True(t, strings.HasPrefix(buf.String(), "04!ENC"))
	assert.Equal(t, "04!ENC006abcdef", buf.String())
}

func TestEncryptedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ct := strings.Repeat("c", 400)
	require.NoError(t, WriteEncryptedFrame(&buf, ct))

	announce, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, EncSentinel, announce)

	got, err := ReadEncryptedBody(&buf)
	require.NoError(t, err)
	assert.Equal(t, ct, got)
}

func TestEncryptedRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	err := WriteEncryptedFrame(&buf, strings.Repeat("c", MaxEncryptedPayload+1))
	assert.ErrorIs(t, err, ErrPayloadSize)
	assert.Zero(t, buf.Len())
}

// Full pipeline: encrypt, frame, unframe, decrypt
func TestEncryptedPipelineRoundTrip(t *testing.T) {
	rnd := random.New()
	cipher, err := keyexch.NewSessionCipher(keyexch.NewSessionKey(rnd), rnd)
	require.NoError(t, err)

	cases := []string{
		"TPYou are the faker!  try to blend in...",
		"TNHow many cups of coffee per day is too many?",
		"",
		"body with & delimiters & inside",
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteEncryptedFrame(&buf, cipher.Encrypt(tc)))

		announce, err := ReadFrame(&buf)
		require.NoError(t, err)
		require.Equal(t, EncSentinel, announce)

		body, err := ReadEncryptedBody(&buf)
		require.NoError(t, err)

		got, err := cipher.Decrypt(body)
		require.NoError(t, err)
		assert.Equal(t, tc, got, "case %q", tc)
	}
}
