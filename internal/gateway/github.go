// Package gateway provides a gateway to the GitHub REST API,
// abstracting away the underlying go-github client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// Fetcher defines the behavior of a gateway for fetching profile data from GitHub.
// Every call reads a single page with the endpoint's default page size.
type Fetcher interface {
	ListRepositories(ctx context.Context, username string) ([]domain.RepositoryHandle, error)
	FetchLanguages(ctx context.Context, repo domain.RepositoryHandle) (domain.LanguageSet, error)
	FetchCommits(ctx context.Context, repo domain.RepositoryHandle) ([]domain.CommitRecord, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     logrus.FieldLogger
}

// NewGitHubGateway creates a gateway talking to baseURL through httpClient.
// No credentials are attached; all calls are anonymous.
func NewGitHubGateway(baseURL string, httpClient *http.Client, logger logrus.FieldLogger) (Fetcher, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse api base url: %w", err)
	}
	restClient := github.NewClient(httpClient)
	restClient.BaseURL = parsed
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
	}, nil
}

// ListRepositories lists the public repositories owned by username.
// Repositories beyond the first page are not returned.
func (g *GitHubGateway) ListRepositories(ctx context.Context, username string) ([]domain.RepositoryHandle, error) {
	log := g.logger.WithFields(logrus.Fields{"stage": "enumerate", "username": username})
	log.Debug("listing repositories")

	repos, _, err := g.restClient.Repositories.ListByUser(ctx, username, nil)
	if err != nil {
		status, body := responseDetails(err)
		return nil, &domain.EnumerationError{Username: username, Status: status, Body: body, Err: err}
	}

	handles := make([]domain.RepositoryHandle, 0, len(repos))
	for _, r := range repos {
		handles = append(handles, domain.RepositoryHandle{
			Owner:        username,
			Name:         r.GetName(),
			LanguagesURL: r.GetLanguagesURL(),
		})
	}
	log.WithField("count", len(handles)).Debug("repositories listed")
	return handles, nil
}

// FetchLanguages returns the language names of repo.
// The languages_url from the listing is followed when present.
func (g *GitHubGateway) FetchLanguages(ctx context.Context, repo domain.RepositoryHandle) (domain.LanguageSet, error) {
	var breakdown map[string]int
	if repo.LanguagesURL != "" {
		req, err := g.restClient.NewRequest(http.MethodGet, repo.LanguagesURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build languages request for %s: %w", repo.Name, err)
		}
		if _, err := g.restClient.Do(ctx, req, &breakdown); err != nil {
			return nil, fmt.Errorf("failed to fetch languages for %s: %w", repo.Name, err)
		}
	} else {
		var err error
		breakdown, _, err = g.restClient.Repositories.ListLanguages(ctx, repo.Owner, repo.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch languages for %s: %w", repo.Name, err)
		}
	}

	languages := domain.NewLanguageSet()
	for name := range breakdown {
		languages.Add(name)
	}
	return languages, nil
}

// FetchCommits returns the first page of commits of repo.
func (g *GitHubGateway) FetchCommits(ctx context.Context, repo domain.RepositoryHandle) ([]domain.CommitRecord, error) {
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, repo.Owner, repo.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commits for %s: %w", repo.Name, err)
	}

	records := make([]domain.CommitRecord, 0, len(commits))
	for _, c := range commits {
		records = append(records, domain.CommitRecord{
			SHA:         c.GetSHA(),
			AuthorName:  c.GetCommit().GetAuthor().GetName(),
			AuthorLogin: c.GetAuthor().GetLogin(),
		})
	}
	return records, nil
}

// responseDetails pulls the HTTP status and message out of a go-github error.
func responseDetails(err error) (int, string) {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode, errResp.Message
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode, rateErr.Message
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode, abuseErr.Message
	}
	return 0, ""
}
