// Package qr renders backups as QR code images.
package qr

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// MaxContentLen is the largest payload a version 40 QR code holds at the
// lowest error correction level in binary mode.
const MaxContentLen = 2953

// ErrTooLarge is returned when the backup does not fit in one QR code.
var ErrTooLarge = errors.New("backup is too large for a QR code")

// PNG renders data as a size x size PNG QR code.
func PNG(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("nothing to encode")
	}
	if len(data) > MaxContentLen {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), MaxContentLen)
	}

	qr, err := qrcode.New(string(data), qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
