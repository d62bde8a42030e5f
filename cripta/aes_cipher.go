package cripta

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
)

// Engine is an AES-128 cipher bound to one key and IV. The round keys are
// expanded once in NewEngine and never change afterwards, so an Engine is
// safe for concurrent use.
type Engine struct {
	key       Block
	iv        Block
	roundKeys RoundKeys
	mode      Mode
	workers   int
	log       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode selects the block chaining mode. The default is ModeCBC.
func WithMode(mode Mode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithWorkers sets how many goroutines may transform blocks at once.
// Values below 2 keep processing on the calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger attaches a logger. Block traces are emitted at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an engine for a 16-byte key and a 16-byte IV.
func NewEngine(key, iv []byte, opts ...Option) (*Engine, error) {
	k, ok := blockFromBytes(key)
	if !ok {
		return nil, fmt.Errorf("%w: key is %d bytes", ErrInvalidKeyLength, len(key))
	}
	v, ok := blockFromBytes(iv)
	if !ok {
		return nil, fmt.Errorf("%w: IV is %d bytes", ErrInvalidKeyLength, len(iv))
	}

	e := &Engine{
		key:     k,
		iv:      v,
		mode:    ModeCBC,
		workers: 1,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.mode.valid() {
		return nil, fmt.Errorf("unsupported cipher mode %d", e.mode)
	}

	e.roundKeys = ExpandKey(e.key)

	return e, nil
}

// EncryptBlock encrypts a single block with no chaining.
func (e *Engine) EncryptBlock(dst, src *Block) {
	state := Blocks{*src}
	e.encryptBlocks(state)
	*dst = state[0]
}

// DecryptBlock decrypts a single block with no chaining.
func (e *Engine) DecryptBlock(dst, src *Block) {
	state := Blocks{*src}
	e.decryptBlocks(state)
	*dst = state[0]
}

// encryptBlocks runs the forward round sequence over every block in place
func (e *Engine) encryptBlocks(state Blocks) {
	AddRoundKey(state, &e.roundKeys[0])

	for round := 1; round < Rounds; round++ {
		SubBytes(state)
		ShiftRows(state)
		MixColumns(state)
		AddRoundKey(state, &e.roundKeys[round])
	}

	// final round has no MixColumns
	SubBytes(state)
	ShiftRows(state)
	AddRoundKey(state, &e.roundKeys[Rounds])
}

// decryptBlocks mirrors encryptBlocks with the round keys taken in reverse
func (e *Engine) decryptBlocks(state Blocks) {
	AddRoundKey(state, &e.roundKeys[Rounds])
	InvShiftRows(state)
	InvSubBytes(state)

	for round := Rounds - 1; round > 0; round-- {
		AddRoundKey(state, &e.roundKeys[round])
		InvMixColumns(state)
		InvShiftRows(state)
		InvSubBytes(state)
	}

	AddRoundKey(state, &e.roundKeys[0])
}

// RoundKeys returns a copy of the expanded key schedule.
func (e *Engine) RoundKeys() RoundKeys {
	return e.roundKeys
}

// KeyHex returns the key as hex.
func (e *Engine) KeyHex() string {
	return hex.EncodeToString(e.key[:])
}

// IVHex returns the IV as hex.
func (e *Engine) IVHex() string {
	return hex.EncodeToString(e.iv[:])
}

// Mode returns the chaining mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// trace logs a block sequence as it crosses a component boundary.
func (e *Engine) trace(stage string, blocks Blocks) {
	if ce := e.log.Check(zap.DebugLevel, stage); ce != nil {
		fields := []zap.Field{zap.Int("blocks", len(blocks))}
		if len(blocks) > 0 {
			fields = append(fields,
				zap.Stringer("first", blocks[0]),
				zap.Stringer("last", blocks[len(blocks)-1]),
			)
		}
		ce.Write(fields...)
	}
}
