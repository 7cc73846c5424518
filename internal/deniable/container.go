// Package deniable implements the v4 binary backup container.
//
// A container holds one or two backup documents, each unlocked by its own
// password. Layout:
//
//	"PW4B" | salt (32 bytes) | body
//
// The body is treated as a ring. For every password, scrypt(password, salt)
// yields a content key and a placement offset into the body, and the
// document is written at that offset, wrapping around the end:
//
//	iv (16) | AES-128-CTR(len uint32 BE | document JSON) | mac (32)
//
// The MAC also covers the IV. Bytes not covered by a block are random, so a
// block is indistinguishable from padding without its password. The body
// size depends only on the largest document, which means a container with a
// single document looks the same as one with a smaller second document.
package deniable

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AlexZinkM/wallet-backup/internal/common"
	"github.com/AlexZinkM/wallet-backup/internal/crypto"
	"github.com/AlexZinkM/wallet-backup/internal/model"
)

// Header layout.
const (
	Magic     = "PW4B"
	SaltLen   = 32
	HeaderLen = len(Magic) + SaltLen

	lenPrefix   = 4
	placeLen    = 8
	blockFrame  = crypto.IVLen + lenPrefix + crypto.MacLen
	derivedSize = crypto.KeyLen + placeLen
)

// MaxSlots is the number of documents a container can hold.
const MaxSlots = 2

// Options configure container construction and extraction. Both sides must
// use the same Kdf parameters.
type Options struct {
	// Kdf parameters; DkLen and Salt are ignored.
	Kdf model.KdfParams
	// SpreadFactor sets body size as a multiple of the largest block.
	SpreadFactor int
	// Quantum rounds the body size up to a multiple of this many bytes.
	Quantum int
	// MaxAttempts bounds the number of salts tried when blocks collide.
	MaxAttempts int
	// Random defaults to crypto/rand.
	Random io.Reader
}

// DefaultOptions returns the parameters used for new containers.
func DefaultOptions() Options {
	return Options{
		Kdf:          crypto.DefaultKdfParams(""),
		SpreadFactor: 16,
		Quantum:      1024,
		MaxAttempts:  32,
	}
}

// Slot binds a password to the document it unlocks.
type Slot struct {
	Password []byte
	Document *model.FullBackup
}

// Container builds and opens v4 containers with fixed options. It is safe
// for concurrent use.
type Container struct {
	opts   Options
	offset func(derived []byte, bodyLen int) int
}

// New validates opts and returns a Container.
func New(opts Options) (*Container, error) {
	opts.Kdf.DkLen = derivedSize
	opts.Kdf.Salt = ""
	if err := crypto.ValidateKdfParams(opts.Kdf); err != nil {
		return nil, fmt.Errorf("invalid kdf params: %w", err)
	}
	if opts.SpreadFactor < 2 {
		return nil, fmt.Errorf("spread factor must be at least 2, got %d", opts.SpreadFactor)
	}
	if opts.Quantum < 1 {
		return nil, fmt.Errorf("quantum must be positive, got %d", opts.Quantum)
	}
	if opts.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", opts.MaxAttempts)
	}
	return &Container{opts: opts, offset: placement}, nil
}

// IsBinaryFormat reports whether data starts with the v4 magic. It says
// nothing about whether any document can be unlocked.
func IsBinaryFormat(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

type preparedSlot struct {
	password []byte
	payload  []byte
}

// Build lays out the documents of slots in a new container. Collisions are
// resolved by retrying with a fresh salt; ctx is checked between attempts.
func (c *Container) Build(ctx context.Context, slots []Slot) ([]byte, error) {
	if len(slots) == 0 || len(slots) > MaxSlots {
		return nil, fmt.Errorf("container holds 1 to %d documents, got %d", MaxSlots, len(slots))
	}
	if len(slots) == 2 && bytes.Equal(slots[0].Password, slots[1].Password) {
		return nil, errors.New("slot passwords must differ")
	}

	// Serialize every document; the largest one sizes the body
	prepared := make([]preparedSlot, 0, len(slots))
	largest := 0
	for i, s := range slots {
		if len(s.Password) == 0 {
			return nil, fmt.Errorf("slot %d: password is empty", i)
		}
		if s.Document == nil {
			return nil, fmt.Errorf("slot %d: document is nil", i)
		}
		payload, err := json.Marshal(s.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		prepared = append(prepared, preparedSlot{password: s.Password, payload: payload})
		largest = max(largest, blockFrame+len(payload))
	}
	defer func() {
		for _, p := range prepared {
			clear(p.payload)
		}
	}()

	// Place them, retrying with fresh salts on collision
	return c.buildOrRetry(ctx, prepared, c.bodySize(largest))
}

func (c *Container) bodySize(largestBlock int) int {
	n := c.opts.SpreadFactor * largestBlock
	q := c.opts.Quantum
	return (n + q - 1) / q * q
}

func (c *Container) buildOrRetry(ctx context.Context, slots []preparedSlot, bodyLen int) ([]byte, error) {
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blob, err := c.attempt(slots, bodyLen)
		if err != nil {
			return nil, err
		}
		if blob != nil {
			return blob, nil
		}
	}
	return nil, &model.ContainerBuildError{Attempts: c.opts.MaxAttempts}
}

type placedSlot struct {
	key    []byte
	offset int
	length int
}

// attempt returns a nil blob without error when the slots collide.
func (c *Container) attempt(slots []preparedSlot, bodyLen int) ([]byte, error) {
	// Generate salt
	salt, err := common.RandomBytes(c.opts.Random, SaltLen)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	// Derive content key and offset per password
	placed := make([]placedSlot, len(slots))
	defer func() {
		for _, p := range placed {
			clear(p.key)
		}
	}()
	for i, s := range slots {
		derived, err := crypto.DeriveKeyWithSalt(s.password, salt, c.opts.Kdf)
		if err != nil {
			return nil, err
		}
		placed[i] = placedSlot{
			key:    derived[:crypto.KeyLen],
			offset: c.offset(derived, bodyLen),
			length: blockFrame + len(s.payload),
		}
	}
	// Blocks must not share a byte
	if len(placed) == 2 && overlaps(placed[0].offset, placed[0].length, placed[1].offset, placed[1].length, bodyLen) {
		return nil, nil
	}

	// Fill the body with random padding, then write each block over it
	body, err := common.RandomBytes(c.opts.Random, bodyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to generate padding: %w", err)
	}
	for i, s := range slots {
		block, err := c.seal(s.payload, placed[i].key)
		if err != nil {
			return nil, err
		}
		writeRing(body, placed[i].offset, block)
	}

	// Magic | salt | body
	out := make([]byte, 0, HeaderLen+bodyLen)
	out = append(out, Magic...)
	out = append(out, salt...)
	return append(out, body...), nil
}

func (c *Container) seal(payload, key []byte) ([]byte, error) {
	iv, err := common.RandomBytes(c.opts.Random, crypto.IVLen)
	if err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}
	// Length prefix lets Extract find the MAC
	plaintext := make([]byte, lenPrefix+len(payload))
	binary.BigEndian.PutUint32(plaintext, uint32(len(payload)))
	copy(plaintext[lenPrefix:], payload)
	defer clear(plaintext)

	ciphertext, mac, err := crypto.Encrypt(plaintext, key, iv, iv)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt block: %w", err)
	}

	block := make([]byte, 0, blockFrame+len(payload))
	block = append(block, iv...)
	block = append(block, ciphertext...)
	return append(block, mac...), nil
}

// Extract returns the document password unlocks. A wrong password, a failed
// MAC and an unparsable document all yield model.ErrNoPayload.
func (c *Container) Extract(data, password []byte) (*model.FullBackup, error) {
	if !IsBinaryFormat(data) {
		return nil, model.ErrUnsupportedFormat
	}
	if len(data) < HeaderLen+blockFrame {
		return nil, model.ErrNoPayload
	}
	salt := data[len(Magic):HeaderLen]
	body := data[HeaderLen:]

	// Derive content key and offset
	derived, err := crypto.DeriveKeyWithSalt(password, salt, c.opts.Kdf)
	if err != nil {
		return nil, err
	}
	defer clear(derived)
	key := derived[:crypto.KeyLen]
	offset := c.offset(derived, len(body))

	// Decrypt the length prefix only, to bound the block
	iv := readRing(body, offset, crypto.IVLen)
	header, err := crypto.XORKeyStream(key, iv, readRing(body, offset+crypto.IVLen, lenPrefix))
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header)
	if uint64(n) > uint64(len(body)-blockFrame) {
		return nil, model.ErrNoPayload
	}

	// Verify MAC and decrypt the whole block
	ciphertext := readRing(body, offset+crypto.IVLen, lenPrefix+int(n))
	mac := readRing(body, offset+crypto.IVLen+lenPrefix+int(n), crypto.MacLen)
	plaintext, err := crypto.Decrypt(ciphertext, key, iv, iv, mac)
	if err != nil {
		return nil, model.ErrNoPayload
	}
	defer clear(plaintext)

	// An authentic block that does not parse looks like no block at all
	var doc model.FullBackup
	if err := json.Unmarshal(plaintext[lenPrefix:], &doc); err != nil {
		return nil, model.ErrNoPayload
	}
	return &doc, nil
}
