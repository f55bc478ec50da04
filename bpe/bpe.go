// Package bpe provides a byte-pair-merge tokenizer and two companion
// recodings of its token streams: a defragmenting remapper and a contextual
// secondary encoder.
// All three satisfy the compose.Stage contract of learn, encode and decode.
package bpe

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/fumin/lz"
)

// A Pair is two adjacent tokens considered for merging.
type Pair struct {
	A lz.Token
	B lz.Token
}

// BPE learns merges by iteratively combining the most frequent adjacent
// token pair until the vocabulary budget is reached or no pair repeats.
//
// Token 0 is reserved for the empty string.
// Singleton entries for the input alphabet occupy ids 1..n as merges of
// (0, symbol); learned merges follow.
type BPE struct {
	maxVocab int
	merges   []Pair
	values   map[lz.Token][]lz.Symbol
	symbols  map[lz.Symbol]lz.Token
}

// New returns a BPE whose vocabulary, singletons included, may grow up to maxVocab entries.
func New(maxVocab int) *BPE {
	return &BPE{maxVocab: maxVocab}
}

// pairStats counts adjacent pairs in tokens.
func pairStats(tokens []lz.Token) map[Pair]int {
	stats := make(map[Pair]int)
	for i := 0; i+1 < len(tokens); i++ {
		stats[Pair{tokens[i], tokens[i+1]}]++
	}
	return stats
}

// mergePairs rewrites tokens with every occurrence of pair replaced by newToken.
func mergePairs(tokens []lz.Token, pair Pair, newToken lz.Token) []lz.Token {
	merged := make([]lz.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && tokens[i] == pair.A && tokens[i+1] == pair.B {
			merged = append(merged, newToken)
			i++
		} else {
			merged = append(merged, tokens[i])
		}
	}
	return merged
}

// mostFrequent returns the pair with the highest count.
// Ties go to the numerically smallest pair, so learning is deterministic.
func mostFrequent(stats map[Pair]int) (Pair, int) {
	var best Pair
	bestCount := 0
	for pair, count := range stats {
		switch {
		case count > bestCount:
			best, bestCount = pair, count
		case count == bestCount && (pair.A < best.A || (pair.A == best.A && pair.B < best.B)):
			best = pair
		}
	}
	return best, bestCount
}

// Learn trains the tokenizer on seq.
// The input alphabet is the set of distinct symbols in seq, seeded as
// singletons in ascending symbol order; merging then continues while the
// most frequent adjacent pair appears more than once and the vocabulary
// budget allows.
// Learn discards any previously learned state.
func (b *BPE) Learn(seq []lz.Symbol) error {
	vocab := maps.Keys(lz.Vocab(seq))
	slices.Sort(vocab)

	b.merges = make([]Pair, 0, len(vocab))
	b.values = make(map[lz.Token][]lz.Symbol, len(vocab))
	b.symbols = make(map[lz.Symbol]lz.Token, len(vocab))
	for i, s := range vocab {
		b.merges = append(b.merges, Pair{0, s})
		b.values[lz.Token(i+1)] = []lz.Symbol{s}
		b.symbols[s] = lz.Token(i + 1)
	}

	tokens := make([]lz.Token, len(seq))
	for i, s := range seq {
		tokens[i] = b.symbols[s]
	}
	if len(tokens) < 2 {
		return nil
	}

	for len(b.merges) < b.maxVocab {
		pair, count := mostFrequent(pairStats(tokens))
		if count <= 1 {
			break
		}
		newToken := lz.Token(len(b.merges) + 1)
		tokens = mergePairs(tokens, pair, newToken)
		b.merges = append(b.merges, pair)
		b.values[newToken] = append(append([]lz.Symbol{}, b.values[pair.A]...), b.values[pair.B]...)
	}
	return nil
}

// Encode tokenizes seq by replaying the learned merges in order.
func (b *BPE) Encode(seq []lz.Symbol) ([]lz.Token, error) {
	tokens := make([]lz.Token, len(seq))
	for i, s := range seq {
		t, ok := b.symbols[s]
		if !ok {
			return nil, errors.Errorf("symbol %d is not in the learned alphabet", s)
		}
		tokens[i] = t
	}
	for i, pair := range b.merges {
		if pair.A == 0 {
			// Singleton seed, nothing to merge.
			continue
		}
		tokens = mergePairs(tokens, pair, lz.Token(i+1))
	}
	return tokens, nil
}

// Decode expands tokens back to the original symbol sequence.
func (b *BPE) Decode(tokens []lz.Token) ([]lz.Symbol, error) {
	decoded := []lz.Symbol{}
	for _, t := range tokens {
		v, ok := b.values[t]
		if !ok {
			return nil, errors.Errorf("unknown token %d", t)
		}
		decoded = append(decoded, v...)
	}
	return decoded, nil
}

// VocabLen returns the number of learned entries, singletons included.
func (b *BPE) VocabLen() int {
	return len(b.merges)
}
