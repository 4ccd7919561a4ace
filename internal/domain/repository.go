// Package domain contains the core data structures of the profile aggregation pipeline.
package domain

import (
	"encoding/json"
	"sort"
)

// RepositoryStatus reports whether every detail of a repository could be fetched.
type RepositoryStatus string

const (
	StatusOK       RepositoryStatus = "ok"
	StatusDegraded RepositoryStatus = "degraded"
)

// RepositoryHandle identifies one repository returned by the enumerator.
// It carries what the detail fetcher needs to reach the languages and commits endpoints.
type RepositoryHandle struct {
	Owner        string
	Name         string
	LanguagesURL string
}

// CommitRecord is the slice of a commit the attributor looks at.
type CommitRecord struct {
	SHA         string
	AuthorName  string
	AuthorLogin string
}

// RepositorySummary holds the contribution of a single repository to a profile.
// It is built once per repository and not modified afterwards.
type RepositorySummary struct {
	Name                  string           `json:"name"`
	Languages             LanguageSet      `json:"languages"`
	AttributedCommitCount int              `json:"attributed_commit_count"`
	Status                RepositoryStatus `json:"status"`
}

// LanguageSet is a set of language names.
type LanguageSet map[string]struct{}

// NewLanguageSet returns a set holding the given names.
func NewLanguageSet(names ...string) LanguageSet {
	s := make(LanguageSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a language name.
func (s LanguageSet) Add(name string) {
	s[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s LanguageSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Merge adds every name of other to s.
func (s LanguageSet) Merge(other LanguageSet) {
	for n := range other {
		s.Add(n)
	}
}

// Clone returns an independent copy of the set.
func (s LanguageSet) Clone() LanguageSet {
	c := make(LanguageSet, len(s))
	c.Merge(s)
	return c
}

// Sorted returns the names in lexical order.
func (s LanguageSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the set as a sorted array.
func (s LanguageSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of names into the set.
func (s *LanguageSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewLanguageSet(names...)
	return nil
}
