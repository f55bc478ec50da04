// Package compose chains learn/encode/decode stages into one tokenizer.
// The token stream of each stage is the symbol stream of the next, so any
// mix of stages, byte-pair tokenizers, defragmenters, contextual recoders,
// dictionary coders, composes into a single lossless codec.
package compose

import (
	"github.com/pkg/errors"

	"github.com/fumin/lz"
)

// A Stage is one learn/encode/decode step of a chain.
type Stage interface {
	// Learn trains the stage on seq.
	Learn(seq []lz.Symbol) error

	// Encode converts seq into this stage's token stream.
	Encode(seq []lz.Symbol) ([]lz.Token, error)

	// Decode inverts Encode exactly.
	Decode(tokens []lz.Token) ([]lz.Symbol, error)
}

// A Chain applies stages in order: learning and encoding run front to back,
// decoding runs back to front.
type Chain struct {
	stages []Stage
}

// New returns a chain over the given stages.
func New(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Learn trains each stage on the output of the stages before it.
func (c *Chain) Learn(seq []lz.Symbol) error {
	cur := seq
	for i, stage := range c.stages {
		if err := stage.Learn(cur); err != nil {
			return errors.Wrapf(err, "stage %d", i)
		}
		encoded, err := stage.Encode(cur)
		if err != nil {
			return errors.Wrapf(err, "stage %d", i)
		}
		cur = encoded
	}
	return nil
}

// Encode runs seq through every stage front to back.
func (c *Chain) Encode(seq []lz.Symbol) ([]lz.Token, error) {
	cur := seq
	for i, stage := range c.stages {
		encoded, err := stage.Encode(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d", i)
		}
		cur = encoded
	}
	return cur, nil
}

// Decode runs tokens through every stage back to front.
func (c *Chain) Decode(tokens []lz.Token) ([]lz.Symbol, error) {
	cur := tokens
	for i := len(c.stages) - 1; i >= 0; i-- {
		decoded, err := c.stages[i].Decode(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d", i)
		}
		cur = decoded
	}
	return cur, nil
}

// A DictionaryCoder is the contract shared by lz.Coder and lz.Hierarchical.
type DictionaryCoder interface {
	Encode(seq []lz.Symbol, learn bool) ([]lz.Token, error)
	Decode(tokens []lz.Token) ([]lz.Symbol, error)
}

// lzStage adapts a dictionary coder to the Stage contract.
// Dictionary coders learn online, so both Learn and Encode run with
// learning enabled; Encode is how the dictionary grows.
type lzStage struct {
	coder DictionaryCoder
}

// LZ wraps an lz coder as a chain stage.
func LZ(coder DictionaryCoder) Stage {
	return lzStage{coder: coder}
}

func (s lzStage) Learn(seq []lz.Symbol) error {
	if _, err := s.coder.Encode(seq, true); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (s lzStage) Encode(seq []lz.Symbol) ([]lz.Token, error) {
	encoded, err := s.coder.Encode(seq, true)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return encoded, nil
}

func (s lzStage) Decode(tokens []lz.Token) ([]lz.Symbol, error) {
	decoded, err := s.coder.Decode(tokens)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return decoded, nil
}
