package domain

import (
	"errors"
	"strings"
)

// ProfileRequest is the input of one pipeline run.
// An empty ResumeReference means no resume was supplied.
type ProfileRequest struct {
	ProfileURL      string `json:"profile_url"`
	ResumeReference string `json:"resume_reference,omitempty"`
}

// Validate checks the required fields of the request.
func (r ProfileRequest) Validate() error {
	if strings.TrimSpace(r.ProfileURL) == "" {
		return errors.New("profile url is required")
	}
	return nil
}

// ProfileSuccess is the aggregate of every repository owned by Username.
// UserLanguages is populated exactly like AllLanguages; it is not filtered by authorship.
type ProfileSuccess struct {
	Username               string              `json:"username"`
	Repositories           []RepositorySummary `json:"repositories"`
	AllLanguages           LanguageSet         `json:"all_languages"`
	UserLanguages          LanguageSet         `json:"user_languages"`
	TotalAttributedCommits int                 `json:"total_attributed_commits"`
}

// ProfileFailure describes why a run could not produce a profile.
type ProfileFailure struct {
	ErrorMessage string `json:"error_message"`
}

// ProfileResult holds exactly one of Success or Failure.
type ProfileResult struct {
	Success *ProfileSuccess `json:"success,omitempty"`
	Failure *ProfileFailure `json:"failure,omitempty"`
}

// OK reports whether the run succeeded.
func (r ProfileResult) OK() bool {
	return r.Success != nil
}

// Succeeded merges the repository summaries into a successful result.
// The order of repos is kept as given.
func Succeeded(username string, repos []RepositorySummary) ProfileResult {
	if repos == nil {
		repos = []RepositorySummary{}
	}
	all := NewLanguageSet()
	total := 0
	for _, r := range repos {
		all.Merge(r.Languages)
		total += r.AttributedCommitCount
	}
	return ProfileResult{Success: &ProfileSuccess{
		Username:               username,
		Repositories:           repos,
		AllLanguages:           all,
		UserLanguages:          all.Clone(),
		TotalAttributedCommits: total,
	}}
}

// Failed returns a failed result carrying msg.
func Failed(msg string) ProfileResult {
	return ProfileResult{Failure: &ProfileFailure{ErrorMessage: msg}}
}
