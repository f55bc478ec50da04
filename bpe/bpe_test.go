package bpe

import (
	"testing"

	"golang.org/x/exp/slices"

	"github.com/fumin/lz"
)

// TestLearn walks the classic worked example.
// The alphabet a,b,c,d seeds tokens 1..4; the repeated "aa", then "ab",
// then "aaab" get merged in that order.
func TestLearn(t *testing.T) {
	seq := lz.SymbolsFromString("aaabdaaabac")
	b := New(100)
	if err := b.Learn(seq); err != nil {
		t.Fatalf("%+v", err)
	}
	if b.VocabLen() != 7 {
		t.Fatalf("%d", b.VocabLen())
	}

	encoded, err := b.Encode(seq)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(encoded, []lz.Token{7, 4, 7, 1, 3}) {
		t.Fatalf("%v", encoded)
	}
	if len(encoded) >= len(seq) {
		t.Fatalf("%d %d", len(encoded), len(seq))
	}

	decoded, err := b.Decode(encoded)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(decoded, seq) {
		t.Fatalf("%v %v", decoded, seq)
	}
}

func TestLearnBudget(t *testing.T) {
	seq := lz.SymbolsFromString("aaabdaaabac")
	b := New(5)
	if err := b.Learn(seq); err != nil {
		t.Fatalf("%+v", err)
	}
	// Four singletons plus exactly one learned merge.
	if b.VocabLen() != 5 {
		t.Fatalf("%d", b.VocabLen())
	}
	encoded, err := b.Encode(seq)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(encoded, []lz.Token{5, 1, 2, 4, 5, 1, 2, 1, 3}) {
		t.Fatalf("%v", encoded)
	}
	decoded, err := b.Decode(encoded)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(decoded, seq) {
		t.Fatalf("%v %v", decoded, seq)
	}
}

func TestEncodeUnknownSymbol(t *testing.T) {
	b := New(10)
	if err := b.Learn(lz.SymbolsFromString("ab")); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := b.Encode(lz.SymbolsFromString("abz")); err == nil {
		t.Fatalf("unknown symbol accepted")
	}
	if _, err := b.Decode([]lz.Token{99}); err == nil {
		t.Fatalf("unknown token accepted")
	}
}

func TestLearnShortInputs(t *testing.T) {
	b := New(10)
	if err := b.Learn(nil); err != nil {
		t.Fatalf("%+v", err)
	}
	encoded, err := b.Encode(nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(encoded) != 0 {
		t.Fatalf("%v", encoded)
	}

	if err := b.Learn([]lz.Symbol{7}); err != nil {
		t.Fatalf("%+v", err)
	}
	encoded, err = b.Encode([]lz.Symbol{7})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(encoded, []lz.Token{1}) {
		t.Fatalf("%v", encoded)
	}
}

func TestDefrag(t *testing.T) {
	d := NewDefrag()
	if err := d.Learn([]lz.Symbol{1000, 7, 1000, 42}); err != nil {
		t.Fatalf("%+v", err)
	}
	encoded, err := d.Encode([]lz.Symbol{1000, 7, 1000, 42})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(encoded, []lz.Token{0, 1, 0, 2}) {
		t.Fatalf("%v", encoded)
	}
	decoded, err := d.Decode(encoded)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(decoded, []lz.Symbol{1000, 7, 1000, 42}) {
		t.Fatalf("%v", decoded)
	}

	if _, err := d.Encode([]lz.Symbol{3}); err == nil {
		t.Fatalf("unknown symbol accepted")
	}
	if _, err := d.Decode([]lz.Token{9}); err == nil {
		t.Fatalf("unknown token accepted")
	}
}
