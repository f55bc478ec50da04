package bpe

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/fumin/lz"
)

// Contextual is a secondary encoding over a token stream.
// For every pair of tokens X, Y it learns the most frequent run of tokens
// that follows an X, ends in a Y and contains no other X, and replaces such
// runs by the single token Y emitted under context X.
//
// Token 0 acts as the reset context: it maps every learned token to itself,
// and every context maps 0 to the empty run.
// Encoded streams therefore start with a leading 0.
type Contextual struct {
	table map[lz.Token]map[lz.Token][]lz.Symbol
}

func NewContextual() *Contextual {
	return &Contextual{}
}

// seqKey is a map key for a symbol sequence.
func seqKey(seq []lz.Symbol) string {
	b := make([]byte, 0, 2*len(seq))
	for _, s := range seq {
		b = binary.AppendVarint(b, int64(s))
	}
	return string(b)
}

// Learn builds the context table from seq.
// Learn discards any previously learned state.
func (c *Contextual) Learn(seq []lz.Symbol) error {
	vocab := maps.Keys(lz.Vocab(seq))
	slices.Sort(vocab)

	type runStat struct {
		run   []lz.Symbol
		count int
	}
	stats := make(map[lz.Token]map[lz.Token]map[string]*runStat, len(vocab))
	start := make(map[lz.Token]int, len(vocab))
	for _, v := range vocab {
		stats[v] = make(map[lz.Token]map[string]*runStat)
		start[v] = -1
	}
	// For each context v, track the position of its last occurrence.
	// Every later token t then closes a run v…t that is interior-free for v
	// by construction, since an interior v would have restarted the tracker.
	for i, t := range seq {
		for _, v := range vocab {
			s := start[v]
			if s == -1 {
				continue
			}
			run := seq[s+1 : i+1]
			byRun := stats[v][t]
			if byRun == nil {
				byRun = make(map[string]*runStat)
				stats[v][t] = byRun
			}
			k := seqKey(run)
			if byRun[k] == nil {
				byRun[k] = &runStat{run: run}
			}
			byRun[k].count++
		}
		start[t] = i
	}

	c.table = make(map[lz.Token]map[lz.Token][]lz.Symbol, len(vocab)+1)
	for _, context := range vocab {
		c.table[context] = map[lz.Token][]lz.Symbol{0: {}}
		for _, end := range vocab {
			byRun := stats[context][end]
			if len(byRun) == 0 {
				continue
			}
			var best *runStat
			for _, rs := range byRun {
				if best == nil || rs.count > best.count ||
					(rs.count == best.count && less(rs.run, best.run)) {
					best = rs
				}
			}
			// Retained runs must not alias the caller's sequence.
			run := make([]lz.Symbol, len(best.run))
			copy(run, best.run)
			c.table[context][end] = run
		}
	}
	reset := make(map[lz.Token][]lz.Symbol, len(vocab))
	for _, v := range vocab {
		reset[v] = []lz.Symbol{v}
	}
	c.table[0] = reset
	return nil
}

// less orders runs by length, then lexicographically, for deterministic tie-breaks.
func less(a, b []lz.Symbol) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return slices.Compare(a, b) < 0
}

// Encode recodes seq against the learned context table.
// At every step the longest matching run of the current context is taken;
// a context with no matching non-empty run emits 0, consuming nothing and
// resetting to the singleton context.
func (c *Contextual) Encode(seq []lz.Symbol) ([]lz.Token, error) {
	encoded := []lz.Token{0}
	context := lz.Token(0)
	cur := 0
	for cur < len(seq) {
		runs, ok := c.table[context]
		if !ok {
			return nil, errors.Errorf("unknown context %d", context)
		}
		best := lz.Token(0)
		bestLen := 0
		ends := maps.Keys(runs)
		slices.Sort(ends)
		for _, end := range ends {
			run := runs[end]
			if len(run) == 0 || len(run) > len(seq)-cur {
				continue
			}
			if slices.Equal(run, seq[cur:cur+len(run)]) && len(run) > bestLen {
				best, bestLen = end, len(run)
			}
		}
		if bestLen == 0 && context == 0 {
			return nil, errors.Errorf("token %d was not learned", seq[cur])
		}
		encoded = append(encoded, best)
		context = best
		cur += bestLen
	}
	return encoded, nil
}

// Decode expands tokens back to the original stream by replaying
// (context, token) pairs against the table.
func (c *Contextual) Decode(tokens []lz.Token) ([]lz.Symbol, error) {
	decoded := []lz.Symbol{}
	for i := 1; i < len(tokens); i++ {
		context, t := tokens[i-1], tokens[i]
		runs, ok := c.table[context]
		if !ok {
			return nil, errors.Errorf("unknown context %d", context)
		}
		run, ok := runs[t]
		if !ok {
			return nil, errors.Errorf("unknown token %d in context %d", t, context)
		}
		decoded = append(decoded, run...)
	}
	return decoded, nil
}
