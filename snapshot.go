package lz

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Snapshots capture a coder's trained state, entry tables, declared
// vocabulary and capacity, in a checksummed CBOR envelope.
// Encoding is deterministic: entries and contexts are written in sorted
// order, so the same model always snapshots to the same bytes.

// encMode encodes CBOR with Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length items.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

type envelope struct {
	Sum     []byte `cbor:"sum"`
	Payload []byte `cbor:"payload"`
}

type entrySnapshot struct {
	Token Token    `cbor:"token"`
	Seq   []Symbol `cbor:"seq"`
}

type coderSnapshot struct {
	Capacity int             `cbor:"capacity"`
	Vocab    []Symbol        `cbor:"vocab"`
	Entries  []entrySnapshot `cbor:"entries"`
}

type hierarchicalSnapshot struct {
	Capacity int `cbor:"capacity"`
	Contexts []struct {
		Context Token         `cbor:"context"`
		Coder   coderSnapshot `cbor:"coder"`
	} `cbor:"contexts"`
}

func seal(v interface{}) ([]byte, error) {
	payload, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	sum := blake3.Sum256(payload)
	b, err := encMode.Marshal(envelope{Sum: sum[:], Payload: payload})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b, nil
}

func open(b []byte, v interface{}) error {
	var env envelope
	if err := cbor.Unmarshal(b, &env); err != nil {
		return errors.Wrap(err, "")
	}
	sum := blake3.Sum256(env.Payload)
	if !slices.Equal(sum[:], env.Sum) {
		return errors.Errorf("snapshot checksum mismatch")
	}
	if err := cbor.Unmarshal(env.Payload, v); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (c *Coder) snapshot() coderSnapshot {
	s := coderSnapshot{Capacity: c.capacity}
	s.Vocab = maps.Keys(c.vocab)
	slices.Sort(s.Vocab)

	tokens := maps.Keys(c.entries)
	slices.Sort(tokens)
	for _, t := range tokens {
		if t == EmptyToken {
			// The empty entry is implicit in every coder.
			continue
		}
		s.Entries = append(s.Entries, entrySnapshot{Token: t, Seq: c.entries[t]})
	}
	return s
}

func restoreCoder(s coderSnapshot) (*Coder, error) {
	if s.Capacity < 0 {
		return nil, errors.Errorf("negative capacity %d", s.Capacity)
	}
	c := &Coder{
		dict:     newTrie(),
		entries:  map[Token][]Symbol{EmptyToken: {}},
		vocab:    make(map[Symbol]struct{}, len(s.Vocab)),
		pool:     newTokenPool(s.Capacity),
		capacity: s.Capacity,
	}
	for _, e := range s.Entries {
		if e.Token < 0 || e.Token >= s.Capacity {
			return nil, errors.Errorf("token %d outside [0, %d)", e.Token, s.Capacity)
		}
		if !c.pool.contains(e.Token) {
			return nil, errors.Errorf("token %d bound twice", e.Token)
		}
		if len(e.Seq) == 0 {
			return nil, errors.Errorf("token %d bound to an empty sequence", e.Token)
		}
		if prefix, _ := c.dict.longestPrefix(e.Seq); len(prefix) == len(e.Seq) {
			return nil, errors.Errorf("sequence of token %d bound twice", e.Token)
		}
		c.addEntry(e.Seq, e.Token)
	}
	for _, sym := range s.Vocab {
		c.vocab[sym] = struct{}{}
	}
	return c, nil
}

// Snapshot serializes the coder's dictionary, vocabulary and capacity.
func (c *Coder) Snapshot() ([]byte, error) {
	return seal(c.snapshot())
}

// RestoreCoder rebuilds a coder from a Snapshot.
func RestoreCoder(b []byte) (*Coder, error) {
	var s coderSnapshot
	if err := open(b, &s); err != nil {
		return nil, errors.Wrap(err, "")
	}
	c, err := restoreCoder(s)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return c, nil
}

// Snapshot serializes every context's coder along with the shared capacity.
func (h *Hierarchical) Snapshot() ([]byte, error) {
	s := hierarchicalSnapshot{Capacity: h.capacity}
	for _, context := range h.Contexts() {
		s.Contexts = append(s.Contexts, struct {
			Context Token         `cbor:"context"`
			Coder   coderSnapshot `cbor:"coder"`
		}{Context: context, Coder: h.coders[context].snapshot()})
	}
	return seal(s)
}

// RestoreHierarchical rebuilds a hierarchical coder from a Snapshot.
func RestoreHierarchical(b []byte) (*Hierarchical, error) {
	var s hierarchicalSnapshot
	if err := open(b, &s); err != nil {
		return nil, errors.Wrap(err, "")
	}
	h := &Hierarchical{capacity: s.Capacity, coders: make(map[Token]*Coder)}
	for _, cs := range s.Contexts {
		if cs.Context != EmptyToken && (cs.Context < 0 || cs.Context >= s.Capacity) {
			return nil, errors.Errorf("context %d outside the token space", cs.Context)
		}
		if _, ok := h.coders[cs.Context]; ok {
			return nil, errors.Errorf("context %d appears twice", cs.Context)
		}
		coder, err := restoreCoder(cs.Coder)
		if err != nil {
			return nil, errors.Wrapf(err, "context %d", cs.Context)
		}
		h.coders[cs.Context] = coder
	}
	if _, ok := h.coders[EmptyToken]; !ok {
		return nil, errors.Errorf("snapshot has no root coder")
	}
	return h, nil
}
