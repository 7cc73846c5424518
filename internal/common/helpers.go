package common

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// BinaryCodec converts bytes to a printable string and back.
type BinaryCodec interface {
	Encode(data []byte) string
	Decode(s string) ([]byte, error)
}

// Base64 is the standard padded Base64 codec. Decode also accepts
// line-wrapped and unpadded input, as produced by Android's Base64.DEFAULT.
var Base64 BinaryCodec = base64Codec{}

type base64Codec struct{}

func (base64Codec) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func (base64Codec) Decode(s string) ([]byte, error) {
	s = stripWhitespace(s)
	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
}

// RandomBytes reads n bytes from r, or from crypto/rand when r is nil.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// RandomHex returns 2*n lowercase hex characters.
func RandomHex(r io.Reader, n int) (string, error) {
	b, err := RandomBytes(r, n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
