package compose

import (
	"strings"
	"testing"

	"golang.org/x/exp/slices"

	"github.com/fumin/lz"
	"github.com/fumin/lz/bpe"
)

func TestChainBPE(t *testing.T) {
	seq := lz.SymbolsFromString("aaabdaaabac")
	chain := New(bpe.NewDefrag(), bpe.New(10))

	if err := chain.Learn(seq); err != nil {
		t.Fatalf("%+v", err)
	}
	encoded, err := chain.Encode(seq)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(encoded) >= len(seq) {
		t.Fatalf("%d %d", len(encoded), len(seq))
	}
	decoded, err := chain.Decode(encoded)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(decoded, seq) {
		t.Fatalf("%v %v", decoded, seq)
	}
}

func TestChainContextual(t *testing.T) {
	seq := lz.SymbolsFromString(strings.Repeat("aaabdaaabac", 3))
	chain := New(bpe.NewDefrag(), bpe.New(10), bpe.NewContextual())

	if err := chain.Learn(seq); err != nil {
		t.Fatalf("%+v", err)
	}
	encoded, err := chain.Encode(seq)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	decoded, err := chain.Decode(encoded)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(decoded, seq) {
		t.Fatalf("%v %v", decoded, seq)
	}
}

func TestChainDictionaryCoder(t *testing.T) {
	seq := lz.SymbolsFromString(strings.Repeat("to be or not to be ", 4))

	hier, err := lz.NewHierarchical(256, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	chain := New(bpe.NewDefrag(), LZ(hier))

	if err := chain.Learn(seq); err != nil {
		t.Fatalf("%+v", err)
	}
	encoded, err := chain.Encode(seq)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	decoded, err := chain.Decode(encoded)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(decoded, seq) {
		t.Fatalf("%v %v", decoded, seq)
	}
}

func TestChainStageError(t *testing.T) {
	chain := New(bpe.NewDefrag(), bpe.New(10))
	if err := chain.Learn(lz.SymbolsFromString("ab")); err != nil {
		t.Fatalf("%+v", err)
	}
	// A symbol never learned fails in the first stage.
	if _, err := chain.Encode(lz.SymbolsFromString("abz")); err == nil {
		t.Fatalf("unknown symbol accepted")
	}
}
