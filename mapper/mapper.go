// Package mapper converts domain state into stored event records and back.
//
// A Mapper runs state through a Transcoder, then optionally a Compressor and a
// Cipher, producing a StoredEvent whose State bytes are ready for a record store:
//
//	m := mapper.New(t,
//	    mapper.WithCompressor(mapper.Zstd()),
//	    mapper.WithCipher(aes),
//	)
//	stored, err := m.ToStored(ctx, id, 1, "dog.created", state)
//	state, err := m.FromStored(ctx, stored)
//
// FromStored undoes the steps in reverse order, so a Mapper must be configured
// the same way on both sides.
package mapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/transcoder"
)

// Mapper errors.
var (
	ErrCompress         = errors.New("compress failed")
	ErrDecompress       = errors.New("decompress failed")
	ErrEncrypt          = errors.New("encrypt failed")
	ErrDecrypt          = errors.New("decrypt failed")
	ErrInvalidKey       = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// StoredEvent is the persisted form of a domain event.
type StoredEvent struct {
	OriginatorID      uuid.UUID
	OriginatorVersion int
	Topic             string
	State             []byte
}

// Mapper converts state to StoredEvent and back.
// A Mapper is immutable and safe for concurrent use.
type Mapper struct {
	transcoder *transcoder.Transcoder
	compressor Compressor
	cipher     Cipher
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithCompressor compresses state after encoding.
func WithCompressor(c Compressor) Option {
	return func(m *Mapper) {
		m.compressor = c
	}
}

// WithCipher encrypts state after encoding and compression.
func WithCipher(c Cipher) Option {
	return func(m *Mapper) {
		m.cipher = c
	}
}

// New returns a Mapper that encodes state with t.
func New(t *transcoder.Transcoder, opts ...Option) *Mapper {
	m := &Mapper{transcoder: t}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ToStored encodes state, then compresses and encrypts it when configured.
func (m *Mapper) ToStored(ctx context.Context, originatorID uuid.UUID, version int, topic string, state any) (StoredEvent, error) {
	stored := StoredEvent{
		OriginatorID:      originatorID,
		OriginatorVersion: version,
		Topic:             topic,
	}

	data, err := m.toState(ctx, state)
	if err != nil {
		emitStored(ctx, stored, err)
		return StoredEvent{}, err
	}
	stored.State = data

	emitStored(ctx, stored, nil)
	return stored, nil
}

func (m *Mapper) toState(ctx context.Context, state any) ([]byte, error) {
	data, err := m.transcoder.EncodeContext(ctx, state)
	if err != nil {
		return nil, err
	}
	if m.compressor != nil {
		if data, err = m.compressor.Compress(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompress, err)
		}
	}
	if m.cipher != nil {
		if data, err = m.cipher.Encrypt(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
		}
	}
	return data, nil
}

// FromStored decrypts and decompresses the stored state when configured, then
// decodes it.
func (m *Mapper) FromStored(ctx context.Context, stored StoredEvent) (any, error) {
	state, err := m.fromState(ctx, stored.State)
	emitLoaded(ctx, stored, err)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (m *Mapper) fromState(ctx context.Context, data []byte) (any, error) {
	var err error
	if m.cipher != nil {
		if data, err = m.cipher.Decrypt(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
		}
	}
	if m.compressor != nil {
		if data, err = m.compressor.Decompress(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
		}
	}
	return m.transcoder.DecodeContext(ctx, data)
}
