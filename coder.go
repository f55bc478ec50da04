package lz

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Coder is an adaptive dictionary coder over a single context.
// It owns a prefix dictionary of symbol sequences and a bounded pool of
// unused token ids, and performs greedy longest-match encoding.
//
// The dictionary only grows.
// When learning is enabled, every encoding step may mint at most one new
// entry, which is always the current longest match extended by one symbol.
// Once all token ids are allocated no further entries are added, but
// encoding and decoding continue against the frozen dictionary.
//
// A Coder is not safe for concurrent use.
type Coder struct {
	dict     *trie
	entries  map[Token][]Symbol
	vocab    map[Symbol]struct{}
	pool     *tokenPool
	capacity int
}

// NewCoder returns a coder whose token id space is [0, capacity).
// Every symbol in vocab is bound to a singleton entry, with ids assigned in
// ascending symbol order starting from zero.
// ErrConfig is returned if vocab has more symbols than capacity.
func NewCoder(capacity int, vocab map[Symbol]struct{}) (*Coder, error) {
	if len(vocab) > capacity {
		return nil, errors.Wrapf(ErrConfig, "%d > %d", len(vocab), capacity)
	}

	c := &Coder{
		dict:     newTrie(),
		entries:  map[Token][]Symbol{EmptyToken: {}},
		vocab:    make(map[Symbol]struct{}, len(vocab)),
		pool:     newTokenPool(capacity),
		capacity: capacity,
	}
	symbols := maps.Keys(vocab)
	slices.Sort(symbols)
	for _, s := range symbols {
		c.addEntry([]Symbol{s}, c.pool.peek())
		c.vocab[s] = struct{}{}
	}
	return c, nil
}

// Capacity returns the size of the token id space.
func (c *Coder) Capacity() int {
	return c.capacity
}

// Len returns the number of bound non-empty entries.
func (c *Coder) Len() int {
	return c.dict.len() - 1
}

// bound reports whether token is bound to an entry.
// EmptyToken is always bound, to the empty sequence.
func (c *Coder) bound(token Token) bool {
	_, ok := c.entries[token]
	return ok
}

// proposeNext is a pure query returning the next encoding step for input.
// The returned prefix is the longest dictionary match, and token is its id.
// When learning and the match is a strict prefix of input and a free id
// remains, the returned pair is instead a candidate new entry: the match
// extended by one symbol, with the smallest unused id.
// The candidate is not committed; the caller decides that.
func (c *Coder) proposeNext(input []Symbol, learn bool) ([]Symbol, Token) {
	prefix, token := c.dict.longestPrefix(input)
	if learn && len(prefix) < len(input) && c.pool.len() > 0 {
		prefix = input[:len(prefix)+1]
		token = c.pool.peek()
	}
	return prefix, token
}

// addEntry binds prefix to token in both lookup directions and removes token from the unused pool.
// Binding an already bound prefix or taking a used token is a logic defect and panics.
func (c *Coder) addEntry(prefix []Symbol, token Token) {
	seq := make([]Symbol, len(prefix))
	copy(seq, prefix)
	c.dict.insert(seq, token)
	c.entries[token] = seq
	c.pool.take(token)
	if c.dict.len() != len(c.entries) {
		panic("lz: dictionary maps out of sync")
	}
}

// EncodeOne encodes a single token from the front of input.
// It returns the consumed prefix and its token, committing a new entry first
// if one was proposed.
// An empty prefix means input starts with a symbol the coder cannot
// represent; Encode turns that into ErrNoMatch.
func (c *Coder) EncodeOne(input []Symbol, learn bool) ([]Symbol, Token) {
	prefix, token := c.proposeNext(input, learn)
	if !c.bound(token) {
		c.addEntry(prefix, token)
	}
	return prefix, token
}

// Encode converts seq into a token sequence by repeated greedy longest-match steps.
// When learn is true the dictionary may grow, one prefix-extension entry per step, until capacity is reached.
// ErrNoMatch is returned if a symbol outside the dictionary is seen and no
// entry can be learned for it.
func (c *Coder) Encode(seq []Symbol, learn bool) ([]Token, error) {
	encoded := []Token{}
	remaining := seq
	for len(remaining) > 0 {
		prefix, token := c.EncodeOne(remaining, learn)
		if len(prefix) == 0 {
			if learn {
				return nil, errors.Wrap(ErrNoMatch, "the output dictionary is full")
			}
			return nil, errors.Wrap(ErrNoMatch, "did you mean to enable learning?")
		}
		encoded = append(encoded, token)
		remaining = remaining[len(prefix):]
	}
	return encoded, nil
}

// decodeOne returns the symbol sequence bound to token.
func (c *Coder) decodeOne(token Token) ([]Symbol, error) {
	seq, ok := c.entries[token]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownToken, "%d", token)
	}
	return seq, nil
}

// Decode reconstructs the exact symbol sequence that produced tokens.
// ErrUnknownToken is returned for any token id not bound in this coder.
func (c *Coder) Decode(tokens []Token) ([]Symbol, error) {
	decoded := []Symbol{}
	for _, t := range tokens {
		seq, err := c.decodeOne(t)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		decoded = append(decoded, seq...)
	}
	return decoded, nil
}

// UpdateVocab extends the declared vocabulary with the symbols in seq.
// Each symbol not already singleton-bound gets a new entry; symbols whose
// singleton was learned organically are only recorded as declared.
// ErrCapacity is returned when a new entry is needed but no token ids remain.
func (c *Coder) UpdateVocab(seq []Symbol) error {
	for _, s := range seq {
		if _, ok := c.vocab[s]; ok {
			continue
		}
		if prefix, _ := c.dict.longestPrefix([]Symbol{s}); len(prefix) == 1 {
			c.vocab[s] = struct{}{}
			continue
		}
		if c.pool.len() == 0 {
			return errors.Wrapf(ErrCapacity, "symbol %d", s)
		}
		c.addEntry([]Symbol{s}, c.pool.peek())
		c.vocab[s] = struct{}{}
	}
	return nil
}
