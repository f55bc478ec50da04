package lz

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Hierarchical is a context-conditioned dictionary coder.
// It keeps one Coder per context, where the context of a step is the token
// emitted by the previous step, and EmptyToken before the first step.
//
// The coder for EmptyToken exists for the lifetime of the instance and is
// seeded with the full declared vocabulary, so every known symbol is always
// encodable from the root context.
// Coders for other contexts are created lazily, with an empty vocabulary,
// the first time their context is seen while learning.
// When such a coder cannot match the next symbol it emits EmptyToken,
// consuming no input, which resets the context to the root coder.
//
// Contexts accumulate for the lifetime of the instance; there is no eviction.
// Callers embedding a Hierarchical in a long-lived process should bound the
// inputs they feed it or rebuild it at checkpoints of their choosing.
//
// A Hierarchical is not safe for concurrent use.
// Minting a new entry reads every sub-coder while mutating one, so even
// sibling coders must not be touched concurrently; guard the whole value
// with a single writer at a time.
type Hierarchical struct {
	capacity int
	coders   map[Token]*Coder
}

// NewHierarchical returns a hierarchical coder whose sub-coders each have
// the given capacity, with the root context seeded from vocab.
// ErrConfig is returned if vocab has more symbols than capacity.
func NewHierarchical(capacity int, vocab map[Symbol]struct{}) (*Hierarchical, error) {
	root, err := NewCoder(capacity, vocab)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &Hierarchical{
		capacity: capacity,
		coders:   map[Token]*Coder{EmptyToken: root},
	}, nil
}

// Contexts returns the context tokens that have a coder, in ascending order.
func (h *Hierarchical) Contexts() []Token {
	contexts := maps.Keys(h.coders)
	slices.Sort(contexts)
	return contexts
}

// EncodeOne encodes a single token from the front of input under the given context.
// It returns the consumed prefix and the emitted token.
// An empty prefix with token EmptyToken means the context's coder could not
// match input; the caller should move to the root context without advancing.
// ErrContextMissing is returned when context has no coder and learn is false.
func (h *Hierarchical) EncodeOne(input []Symbol, context Token, learn bool) ([]Symbol, Token, error) {
	if len(input) == 0 {
		return nil, EmptyToken, nil
	}

	coder, ok := h.coders[context]
	if !ok {
		if !learn {
			return nil, EmptyToken, errors.Wrapf(ErrContextMissing, "%d", context)
		}
		// A fresh context discovers its own vocabulary over time.
		// Its dictionary may even fill up before seeing every input symbol;
		// symbols it cannot represent fall through to the root coder via
		// the EmptyToken emission below.
		var err error
		if coder, err = NewCoder(h.capacity, nil); err != nil {
			return nil, EmptyToken, errors.Wrap(err, "")
		}
		h.coders[context] = coder
	}

	prefix, token := coder.proposeNext(input, learn)
	if coder.bound(token) {
		return prefix, token, nil
	}

	token = h.arbitrate(coder, context, input, token)
	coder.addEntry(prefix, token)
	return prefix, token, nil
}

// arbitrate picks the id a new entry of the given context's coder receives.
//
// Every other context's coder is asked, read-only, what it would do with the
// same input. A sibling whose proposal is one of its own bound entries votes
// for that id. Among the ids still unused within the minting context, a
// strict plurality of votes wins; a tie, or no votes at all, falls back to
// fallback, the id originally proposed by the minting coder.
//
// Keeping the same id attached to the same prefix semantics across contexts
// makes the emitted token distribution more regular, which helps any
// downstream compression stage.
func (h *Hierarchical) arbitrate(coder *Coder, context Token, input []Symbol, fallback Token) Token {
	votes := make(map[Token]int)
	for _, other := range h.Contexts() {
		if other == context {
			continue
		}
		_, proposed := h.coders[other].proposeNext(input, true)
		if h.coders[other].bound(proposed) {
			votes[proposed]++
		}
	}

	candidates := maps.Keys(votes)
	slices.Sort(candidates)
	best, bestCount, tied := fallback, 0, false
	for _, id := range candidates {
		if !coder.pool.contains(id) {
			continue
		}
		switch n := votes[id]; {
		case n > bestCount:
			best, bestCount, tied = id, n, false
		case n == bestCount:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return fallback
	}
	return best
}

// Encode converts seq into a token sequence, advancing the context after
// every emitted token.
// ErrNoMatch is returned if even the root coder cannot match the remaining
// input and nothing can be learned for it.
func (h *Hierarchical) Encode(seq []Symbol, learn bool) ([]Token, error) {
	encoded := []Token{}
	context := EmptyToken
	remaining := seq
	for len(remaining) > 0 {
		prefix, token, err := h.EncodeOne(remaining, context, learn)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		if len(prefix) == 0 && context == EmptyToken {
			// The root coder is the fallback of last resort. If it cannot
			// match either, emitting EmptyToken again would loop forever.
			if learn {
				return nil, errors.Wrap(ErrNoMatch, "the output dictionary is full")
			}
			return nil, errors.Wrap(ErrNoMatch, "did you mean to enable learning?")
		}
		encoded = append(encoded, token)
		context = token
		remaining = remaining[len(prefix):]
	}
	return encoded, nil
}

// Decode reconstructs the exact symbol sequence that produced tokens,
// walking contexts the same way Encode does.
// ErrContextMissing is returned when a token selects a context with no
// coder, and ErrUnknownToken when a token is unbound within its context.
func (h *Hierarchical) Decode(tokens []Token) ([]Symbol, error) {
	decoded := []Symbol{}
	context := EmptyToken
	for _, t := range tokens {
		coder, ok := h.coders[context]
		if !ok {
			return nil, errors.Wrapf(ErrContextMissing, "%d", context)
		}
		seq, err := coder.decodeOne(t)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		decoded = append(decoded, seq...)
		context = t
	}
	return decoded, nil
}

// UpdateVocab extends the root coder's vocabulary with the symbols in seq.
// Other contexts grow organically through use.
func (h *Hierarchical) UpdateVocab(seq []Symbol) error {
	if err := h.coders[EmptyToken].UpdateVocab(seq); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
