package bank

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var ErrUnknownBank = errors.New("unknown bank")

// UnknownBankError is returned by Lookup for identifiers with no profile.
type UnknownBankError struct {
	ID         string
	Suggestion string // closest registered identifier, if any is close
}

func (e *UnknownBankError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown bank %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown bank %q", e.ID)
}

func (e *UnknownBankError) Is(target error) bool {
	return target == ErrUnknownBank
}

// Registry maps bank identifiers to profiles. Lookups are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	order    []string
}

func NewRegistry(profiles ...*Profile) *Registry {
	r := &Registry{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// DefaultRegistry returns a registry holding the built-in bank layouts.
func DefaultRegistry() *Registry {
	return NewRegistry(Kazpost(), Kaspi(), Halyk(), BCC())
}

// Register adds a profile. It panics on an empty or duplicate identifier,
// both of which are programming errors in the profile table.
func (r *Registry) Register(p *Profile) {
	if p == nil || p.ID == "" {
		panic("bank: profile without identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.ID]; exists {
		panic(fmt.Sprintf("bank: duplicate profile %q", p.ID))
	}
	r.profiles[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Lookup returns the profile registered under id. Matching is exact and case-sensitive.
func (r *Registry) Lookup(id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.profiles[id]; ok {
		return p, nil
	}
	return nil, &UnknownBankError{ID: id, Suggestion: closest(id, r.order)}
}

// Profiles returns the registered profiles in registration order.
func (r *Registry) Profiles() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// IDs returns the registered identifiers in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// closest picks the identifier a mistyped id most likely meant. Subsequence
// matches ("kaspi" in "imex@kaspi.kz") win; otherwise the smallest edit distance
// within half the candidate's length.
func closest(id string, candidates []string) string {
	if id == "" || len(candidates) == 0 {
		return ""
	}

	if ranks := fuzzy.RankFindFold(id, candidates); len(ranks) > 0 {
		best := ranks[0]
		for _, rk := range ranks[1:] {
			if rk.Distance < best.Distance {
				best = rk
			}
		}
		return best.Target
	}

	best, bestDist := "", -1
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(id, c)
		if d*2 > len([]rune(c)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
