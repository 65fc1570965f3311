package filter

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Term is one blocked phrase of the listing-text screen.
type Term struct {
	Term   string `json:"term"`
	Reason string `json:"reason,omitempty"`
}

// Match is a blocked term found in a listing text.
type Match struct {
	Term     string `json:"term"`
	Reason   string `json:"reason,omitempty"`
	Position int    `json:"position"` // rune offset in the normalised text
}

type node struct {
	children map[rune]*node
	fail     *node
	output   []int // indices into Blocklist.terms
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Blocklist is an Aho-Corasick automaton over normalised blocked terms.
// Build may be called concurrently with Screen; readers see either the old
// or the new automaton.
type Blocklist struct {
	mu    sync.RWMutex
	root  *node
	terms []Term
	sizes []int // normalised rune length per term
}

// NewBlocklist creates an empty blocklist.
func NewBlocklist() *Blocklist {
	return &Blocklist{root: newNode()}
}

// Build replaces the automaton with one built from terms. Terms that
// normalise to blank are ignored.
func (b *Blocklist) Build(terms []Term) {
	root := newNode()
	kept := make([]Term, 0, len(terms))
	sizes := make([]int, 0, len(terms))

	for _, t := range terms {
		word := []rune(strings.TrimSpace(NormalizeText(t.Term)))
		if len(word) == 0 {
			continue
		}
		n := root
		for _, r := range word {
			child, ok := n.children[r]
			if !ok {
				child = newNode()
				n.children[r] = child
			}
			n = child
		}
		n.output = append(n.output, len(kept))
		kept = append(kept, t)
		sizes = append(sizes, len(word))
	}
	linkFailures(root)

	b.mu.Lock()
	b.root, b.terms, b.sizes = root, kept, sizes
	b.mu.Unlock()
}

// linkFailures sets failure links breadth first and merges outputs along them.
func linkFailures(root *node) {
	queue := make([]*node, 0, len(root.children))
	for _, child := range root.children {
		child.fail = root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for r, child := range current.children {
			queue = append(queue, child)

			f := current.fail
			for f != nil && f.children[r] == nil {
				f = f.fail
			}
			if f == nil {
				child.fail = root
				continue
			}
			child.fail = f.children[r]
			child.output = append(child.output, child.fail.output...)
		}
	}
}

// Len returns the number of terms in the automaton.
func (b *Blocklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.terms)
}

// Screen returns every blocked term occurring in text.
func (b *Blocklist) Screen(text string) []Match {
	b.mu.RLock()
	root, terms, sizes := b.root, b.terms, b.sizes
	b.mu.RUnlock()

	var matches []Match
	walk(root, NormalizeText(text), func(pos int, out []int) bool {
		for _, i := range out {
			matches = append(matches, Match{
				Term:     terms[i].Term,
				Reason:   terms[i].Reason,
				Position: pos - sizes[i] + 1,
			})
		}
		return true
	})
	return matches
}

// Blocked reports whether text contains any blocked term.
func (b *Blocklist) Blocked(text string) bool {
	b.mu.RLock()
	root := b.root
	b.mu.RUnlock()

	found := false
	walk(root, NormalizeText(text), func(int, []int) bool {
		found = true
		return false
	})
	return found
}

// walk feeds text through the automaton and calls emit for every state with
// output. It stops when emit returns false.
func walk(root *node, text string, emit func(pos int, out []int) bool) {
	n := root
	pos := 0
	for _, r := range text {
		for n != root && n.children[r] == nil {
			n = n.fail
		}
		if next, ok := n.children[r]; ok {
			n = next
		}
		if len(n.output) > 0 && !emit(pos, n.output) {
			return
		}
		pos++
	}
}

var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'@': 'a',
	'$': 's',
}

// NormalizeText folds case, strips diacritics and undoes common leetspeak.
func NormalizeText(text string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
		cases.Fold(),
		runes.Map(func(r rune) rune {
			if s, ok := leet[r]; ok {
				return s
			}
			return r
		}),
	)
	result, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return result
}
