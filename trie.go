package lz

// A trieNode represents one symbol of a bound or partially bound sequence.
type trieNode struct {
	children map[Symbol]*trieNode
	token    Token
	bound    bool
}

// A trie maps symbol sequences to tokens and supports longest-prefix lookup.
// The root is always bound to EmptyToken, representing the empty sequence.
type trie struct {
	root *trieNode
	size int
}

func newTrie() *trie {
	t := &trie{root: &trieNode{token: EmptyToken, bound: true}}
	t.size = 1
	return t
}

// len returns the number of bound sequences, including the empty sequence.
func (t *trie) len() int {
	return t.size
}

// insert binds seq to token.
// seq must not already be bound.
func (t *trie) insert(seq []Symbol, token Token) {
	node := t.root
	for _, s := range seq {
		child, ok := node.children[s]
		if !ok {
			child = &trieNode{token: EmptyToken}
			if node.children == nil {
				node.children = make(map[Symbol]*trieNode)
			}
			node.children[s] = child
		}
		node = child
	}
	if node.bound {
		panic("lz: sequence already bound")
	}
	node.token = token
	node.bound = true
	t.size++
}

// longestPrefix returns the longest bound sequence that is a prefix of input, together with its token.
// If no non-empty entry matches, it returns an empty prefix bound to EmptyToken.
// The walk visits at most one node per matched symbol, so the cost is
// proportional to the length of the match, not to the dictionary size.
func (t *trie) longestPrefix(input []Symbol) ([]Symbol, Token) {
	node := t.root
	best := 0
	bestToken := EmptyToken
	for i, s := range input {
		child, ok := node.children[s]
		if !ok {
			break
		}
		node = child
		if node.bound {
			best = i + 1
			bestToken = node.token
		}
	}
	return input[:best], bestToken
}
