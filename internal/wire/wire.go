// Package wire implements the length-prefixed text framing used on every
// socket after the key exchange. Plain frames carry a two-ASCII-digit
// decimal length; encrypted frames are announced by a fixed sentinel frame
// and carry a three-digit length, since ciphertext picks up IV, padding and
// base64 overhead.
package wire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	// MaxPlainPayload is the largest payload a plain frame can carry
	MaxPlainPayload = 99

	// MaxEncryptedPayload is the largest ciphertext an encrypted frame can carry
	MaxEncryptedPayload = 999

	// EncSentinel is the payload of the frame announcing "next message is
	// encrypted". On the wire it is always the 6 bytes "04!ENC".
	EncSentinel = "!ENC"
)

var (
	ErrPayloadSize     = errors.New("payload size out of range")
	ErrMalformedLength = errors.New("malformed length prefix")
)

// ReadFrame reads one plain frame: len2 || payload
func ReadFrame(r io.Reader) (string, error) {
	n, err := readLength(r, 2)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	return string(buf), nil
}

// WriteFrame writes one plain frame. Payloads are at least the one-byte
// command code and at most MaxPlainPayload bytes.
func WriteFrame(w io.Writer, payload string) error {
	if len(payload) == 0 || len(payload) > MaxPlainPayload {
		return fmt.Errorf("%w: %d", ErrPayloadSize, len(payload))
	}
	_, err := fmt.Fprintf(w, "%02d%s", len(payload), payload)
	return err
}

// ReadEncryptedBody reads the len3 || ciphertext part of an encrypted
// message. The caller invokes it after ReadFrame returned EncSentinel.
func ReadEncryptedBody(r io.Reader) (string, error) {
	n, err := readLength(r, 3)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read ciphertext: %w", err)
	}
	return string(buf), nil
}

// WriteEncryptedFrame writes the sentinel announcement followed by the
// three-digit-length ciphertext frame
func WriteEncryptedFrame(w io.Writer, ciphertext string) error {
	if len(ciphertext) == 0 || len(ciphertext) > MaxEncryptedPayload {
		return fmt.Errorf("%w: %d", ErrPayloadSize, len(ciphertext))
	}
	if err := WriteFrame(w, EncSentinel); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%03d%s", len(ciphertext), ciphertext)
	return err
}

// readLength reads a zero-padded decimal length of the given digit width.
// A non-numeric or zero length is malformed and treated by callers exactly
// like a disconnect.
func readLength(r io.Reader, digits int) (int, error) {
	buf := make([]byte, digits)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("read length: %w", err)
	}
	n, err := strconv.Atoi(string(buf))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLength, buf)
	}
	return n, nil
}
