// Package lz provides an online, adaptive dictionary coder.
// A Coder converts a stream of integer symbols into a stream of integer tokens by discovering repeated substrings on the fly and assigning them short codes.
// Decoding losslessly reconstructs the original symbol stream from the token stream.
//
// A Hierarchical coder extends this by conditioning the dictionary used at each step on the most recently emitted token, its context.
// This exploits inputs where the statistically useful substring dictionary differs depending on what just preceded it.
//
// Below is an example of using this package to compress and decompress a file:
//
//	go run compress/main.go data.txt > data.lz
//	cat data.lz | go run decompress/main.go > data.out
//	diff data.txt data.out
//
// Coders are not safe for concurrent use.
// In particular, encoding into a Hierarchical reads the state of all of its
// sub-coders while mutating one of them, so the whole coder must be treated
// as a single unit of mutation and guarded by one writer at a time.
package lz

import (
	"github.com/pkg/errors"
)

// A Symbol is the atomic unit of input data, commonly a byte value.
// The alphabet is unbounded, any non-negative integer is a valid Symbol.
type Symbol = int

// A Token is an integer code emitted by a coder, bound to a symbol sequence.
// Tokens are drawn from the fixed id space [0, capacity).
type Token = int

// EmptyToken denotes "no context" and the empty symbol sequence at the root of every dictionary.
// It lies outside the allocatable id space and is never allocated or freed.
const EmptyToken Token = -1

// Error kinds returned by coders.
// All of them signal a configuration or protocol mismatch that only the
// caller can resolve; none should be retried as-is.
var (
	// ErrConfig is returned when the declared input vocabulary is larger than the declared capacity.
	ErrConfig = errors.New("output vocab size is smaller than input vocab size")

	// ErrNoMatch is returned when encoding cannot match any dictionary entry
	// and either learning is disabled or capacity is exhausted.
	ErrNoMatch = errors.New("could not match any tokens")

	// ErrCapacity is returned when a free token id is needed but none remain.
	ErrCapacity = errors.New("no unused tokens available")

	// ErrContextMissing is returned when a context with no established coder
	// is referenced and learning is disabled.
	ErrContextMissing = errors.New("context not in coders")

	// ErrUnknownToken is returned when decoding a token id that is unbound in the relevant coder.
	ErrUnknownToken = errors.New("unknown token")
)

// SymbolsFromString returns the UTF-8 bytes of s as a symbol sequence.
func SymbolsFromString(s string) []Symbol {
	return SymbolsFromBytes([]byte(s))
}

// SymbolsFromBytes returns b as a sequence of byte-valued symbols.
func SymbolsFromBytes(b []byte) []Symbol {
	symbols := make([]Symbol, len(b))
	for i, c := range b {
		symbols[i] = Symbol(c)
	}
	return symbols
}

// Vocab returns the set of distinct symbols in seq.
func Vocab(seq []Symbol) map[Symbol]struct{} {
	vocab := make(map[Symbol]struct{})
	for _, s := range seq {
		vocab[s] = struct{}{}
	}
	return vocab
}

// ByteVocab returns the vocabulary of all 256 byte values.
func ByteVocab() map[Symbol]struct{} {
	vocab := make(map[Symbol]struct{}, 256)
	for i := 0; i < 256; i++ {
		vocab[Symbol(i)] = struct{}{}
	}
	return vocab
}
