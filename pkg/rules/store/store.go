package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/validator"
)

// Store is an immutable, priority-ordered rule list. It is constructed
// by Load and never modified afterwards; reloading builds a new Store.
type Store struct {
	rules       []rules.Rule
	source      string
	fingerprint string
	loadedAt    time.Time
}

// Load builds a Store from a source. The pipeline is decode, validate,
// stable-sort ascending by priority, compile condition predicates.
// Load fails on the first broken stage and never returns a partially
// valid store.
func Load(ctx context.Context, src Source) (*Store, error) {
	ruleSet, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := validator.New().Validate(ruleSet); err != nil {
		return nil, err
	}

	ordered := cloneRules(ruleSet)
	sortByPriority(ordered)

	for i := range ordered {
		if err := ordered[i].Compile(); err != nil {
			return nil, err
		}
	}

	return &Store{
		rules:       ordered,
		source:      src.String(),
		fingerprint: fingerprintRules(ordered),
		loadedAt:    time.Now(),
	}, nil
}

// Rules returns the ordered rule list. The slice is shared with the
// store and must be treated as read-only.
func (s *Store) Rules() []rules.Rule {
	return s.rules
}

// Len returns the number of loaded rules.
func (s *Store) Len() int {
	return len(s.rules)
}

// Source describes where the rules were loaded from.
func (s *Store) Source() string {
	return s.source
}

// Fingerprint returns a content hash of the ordered rule list. Two
// stores loaded from equal content share a fingerprint, which lets
// reload paths skip swaps that would change nothing.
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

// LoadedAt returns the construction time of this store.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// sortByPriority orders rules by ascending priority. The sort is stable:
// rules with equal priority keep their source order, which is the
// documented tie-break.
func sortByPriority(ruleSet []rules.Rule) {
	sort.SliceStable(ruleSet, func(i, j int) bool {
		return ruleSet[i].Priority < ruleSet[j].Priority
	})
}

// cloneRules copies the rule list deeply enough that the store owns its
// conditions exclusively; compiling predicates must not write into
// slices the caller still holds.
func cloneRules(in []rules.Rule) []rules.Rule {
	out := make([]rules.Rule, len(in))
	copy(out, in)
	for i := range out {
		if in[i].Conditions != nil {
			out[i].Conditions = make([]rules.Condition, len(in[i].Conditions))
			copy(out[i].Conditions, in[i].Conditions)
		}
	}
	return out
}

// fingerprintRules hashes the canonical JSON encoding of the ordered
// rule list.
func fingerprintRules(ruleSet []rules.Rule) string {
	data, err := json.Marshal(ruleSet)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
