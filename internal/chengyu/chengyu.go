// Package chengyu answers idiom queries in group chats: "#成语" continues an
// idiom chain, "?成语" (or full-width "？") explains one.
package chengyu

import (
	"regexp"
	"sort"
	"strings"
)

var triggerPattern = regexp.MustCompile(`^([#?？])(.*)$`)

// Handle inspects one message. Returns the reply and true when the message is
// an idiom query that produced an answer.
func Handle(content string) (string, bool) {
	m := triggerPattern.FindStringSubmatch(strings.TrimSpace(content))
	if m == nil {
		return "", false
	}
	flag, word := m[1], m[2]

	if _, ok := meanings[word]; !ok {
		return "", false
	}

	switch flag {
	case "#":
		next, ok := nextInChain(word)
		if !ok {
			return "", false
		}
		return next, true
	default: // "?" or "？"
		return word + "：" + meanings[word], true
	}
}

// nextInChain finds an idiom whose first rune matches the query's last rune.
func nextInChain(word string) (string, bool) {
	runes := []rune(word)
	if len(runes) == 0 {
		return "", false
	}
	last := runes[len(runes)-1]

	candidates, ok := chainIndex[last]
	if !ok || len(candidates) == 0 {
		return "", false
	}
	// Deterministic pick: first candidate that is not the query itself.
	for _, c := range candidates {
		if c != word {
			return c, true
		}
	}
	return "", false
}

// chainIndex maps a leading rune to the idioms starting with it.
var chainIndex = buildChainIndex()

func buildChainIndex() map[rune][]string {
	idx := make(map[rune][]string)
	for word := range meanings {
		runes := []rune(word)
		if len(runes) == 0 {
			continue
		}
		idx[runes[0]] = append(idx[runes[0]], word)
	}
	// Map iteration order is random; sort for deterministic chains.
	for _, words := range idx {
		sort.Strings(words)
	}
	return idx
}
