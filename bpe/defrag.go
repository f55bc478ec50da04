package bpe

import (
	"github.com/pkg/errors"

	"github.com/fumin/lz"
)

// Defrag remaps a sparse symbol alphabet onto the dense id range [0, n).
// Ids are assigned in order of first appearance during Learn.
// Running it ahead of a capacity-bounded stage lets that stage spend its
// budget on distinct symbols rather than on the span of their values.
type Defrag struct {
	forward map[lz.Symbol]lz.Token
	reverse []lz.Symbol
}

func NewDefrag() *Defrag {
	return &Defrag{forward: make(map[lz.Symbol]lz.Token)}
}

// Learn records every distinct symbol of seq, extending the mapping built by
// earlier Learn calls.
func (d *Defrag) Learn(seq []lz.Symbol) error {
	for _, s := range seq {
		if _, ok := d.forward[s]; ok {
			continue
		}
		d.forward[s] = lz.Token(len(d.reverse))
		d.reverse = append(d.reverse, s)
	}
	return nil
}

// Encode maps seq onto dense ids.
func (d *Defrag) Encode(seq []lz.Symbol) ([]lz.Token, error) {
	encoded := make([]lz.Token, len(seq))
	for i, s := range seq {
		t, ok := d.forward[s]
		if !ok {
			return nil, errors.Errorf("symbol %d was not learned", s)
		}
		encoded[i] = t
	}
	return encoded, nil
}

// Decode maps dense ids back onto the original symbols.
func (d *Defrag) Decode(tokens []lz.Token) ([]lz.Symbol, error) {
	decoded := make([]lz.Symbol, len(tokens))
	for i, t := range tokens {
		if t < 0 || int(t) >= len(d.reverse) {
			return nil, errors.Errorf("unknown token %d", t)
		}
		decoded[i] = d.reverse[t]
	}
	return decoded, nil
}
