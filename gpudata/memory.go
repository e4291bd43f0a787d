package gpudata

import (
	"errors"
	"fmt"
	"slices"
)

// ErrLayoutMismatch is returned when a write does not match a layout field.
var ErrLayoutMismatch = errors.New("gpudata: write does not match memory layout")

// Word is one 32-bit GPU memory cell.
type Word = uint32

// BlockAlignment is the word multiple every Block must occupy.
const BlockAlignment = 4

// Block is a value that can be written to GPU memory.
type Block interface {
	// Words returns the encoded value. The length must be a multiple of
	// BlockAlignment.
	Words() []Word
}

// Memory is a growable buffer of GPU words addressed with global addresses.
//
// The zero value is an empty buffer ready to use.
type Memory struct {
	buf []Word
}

// NewMemory returns an empty buffer with room for capacity words.
func NewMemory(capacity int) *Memory {
	return &Memory{buf: make([]Word, 0, capacity)}
}

// Len returns the number of words written.
func (m *Memory) Len() int { return len(m.buf) }

// Words returns the underlying words. The slice aliases the buffer and must
// not be modified.
func (m *Memory) Words() []Word { return m.buf }

// Push appends block and returns the global address of its first word.
func (m *Memory) Push(block Block) Address {
	words := block.Words()
	if len(words)%BlockAlignment != 0 {
		panic(fmt.Sprintf("gpudata: block of %d words is not %d-word aligned", len(words), BlockAlignment))
	}
	addr := GlobalAddress(uint32(len(m.buf))) //nolint:gosec // bounded by checkOffset
	m.buf = append(m.buf, words...)
	return addr
}

// Set overwrites the words at addr with block.
func (m *Memory) Set(addr Address, block Block) {
	m.SetWords(addr, block.Words())
}

// SetWords overwrites len(words) words starting at addr.
func (m *Memory) SetWords(addr Address, words []Word) {
	if addr.Type() != Global {
		panic(fmt.Sprintf("gpudata: memory is addressed globally, got %v", addr))
	}
	base := int(addr.Offset())
	if base+len(words) > len(m.buf) {
		panic(fmt.Sprintf("gpudata: write of %d words at %v past end of %d-word buffer", len(words), addr, len(m.buf)))
	}
	copy(m.buf[base:], words)
}

// Get returns a copy of n words starting at addr.
func (m *Memory) Get(addr Address, n int) []Word {
	if addr.Type() != Global {
		panic(fmt.Sprintf("gpudata: memory is addressed globally, got %v", addr))
	}
	base := int(addr.Offset())
	if base+n > len(m.buf) {
		panic(fmt.Sprintf("gpudata: read of %d words at %v past end of %d-word buffer", n, addr, len(m.buf)))
	}
	return slices.Clone(m.buf[base : base+n])
}

// Clone returns a deep copy.
func (m *Memory) Clone() *Memory {
	return &Memory{buf: slices.Clone(m.buf)}
}
