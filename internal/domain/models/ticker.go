package models

import (
	"sort"
	"strings"
)

// Ticker is a normalized B3 security identifier (e.g. "PETR4").
// It is the identity key used for every merge and reconciliation step.
type Ticker string

// NormalizeTicker trims surrounding whitespace and uppercases s.
// The second return value is false when nothing is left after trimming.
func NormalizeTicker(s string) (Ticker, bool) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "", false
	}
	return Ticker(t), true
}

func (t Ticker) String() string { return string(t) }

// Universe is the deduplicated, lexicographically sorted set of tickers
// evaluated in one run. It is immutable once built.
type Universe struct {
	tickers []Ticker
}

// NewUniverse builds a Universe from raw identifiers, normalizing and
// deduplicating them. Blank identifiers are dropped.
func NewUniverse(raw []string) Universe {
	seen := make(map[Ticker]struct{}, len(raw))
	out := make([]Ticker, 0, len(raw))
	for _, s := range raw {
		t, ok := NormalizeTicker(s)
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return Universe{tickers: out}
}

// Tickers returns a copy of the sorted ticker list.
func (u Universe) Tickers() []Ticker {
	out := make([]Ticker, len(u.tickers))
	copy(out, u.tickers)
	return out
}

// Len returns the number of tickers in the universe.
func (u Universe) Len() int { return len(u.tickers) }
