package lz

import (
	"math/bits"
)

// A tokenPool tracks the unused token ids in [0, capacity).
// It is a bitset and peek always returns the smallest free id, so allocation
// is reproducible across runs.
type tokenPool struct {
	words []uint64
	free  int
}

func newTokenPool(capacity int) *tokenPool {
	p := &tokenPool{
		words: make([]uint64, (capacity+63)/64),
		free:  capacity,
	}
	for i := 0; i < capacity; i++ {
		p.words[i/64] |= 1 << (i % 64)
	}
	return p
}

// len returns the number of unused ids.
func (p *tokenPool) len() int {
	return p.free
}

// contains reports whether token is unused.
func (p *tokenPool) contains(token Token) bool {
	if token < 0 || token >= len(p.words)*64 {
		return false
	}
	return p.words[token/64]&(1<<(token%64)) != 0
}

// peek returns the smallest unused id without removing it.
// It panics if the pool is empty; callers check len first.
func (p *tokenPool) peek() Token {
	for i, w := range p.words {
		if w != 0 {
			return Token(i*64 + bits.TrailingZeros64(w))
		}
	}
	panic("lz: token pool is empty")
}

// take removes token from the pool.
// token must be unused.
func (p *tokenPool) take(token Token) {
	if !p.contains(token) {
		panic("lz: token is not in the unused pool")
	}
	p.words[token/64] &^= 1 << (token % 64)
	p.free--
}
