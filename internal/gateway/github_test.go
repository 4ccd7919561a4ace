package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (Fetcher, *httptest.Server) {
	server := httptest.NewServer(handler)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// No trailing slash on purpose: the constructor adds it.
	gateway, err := NewGitHubGateway(server.URL, server.Client(), logger)
	require.NoError(t, err)

	return gateway, server
}

func TestGitHubGateway_ListRepositories(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []domain.RepositoryHandle
		expectedStatus int
		expectError    bool
	}{
		{
			name: "happy path - keeps listing order",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/alice/repos", r.URL.Path)
				assert.Empty(t, r.URL.Query().Get("page"))
				assert.Empty(t, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `[
					{"name": "zeta", "languages_url": "https://api.example/repos/alice/zeta/languages"},
					{"name": "alpha", "languages_url": "https://api.example/repos/alice/alpha/languages"}
				]`)
			},
			expected: []domain.RepositoryHandle{
				{Owner: "alice", Name: "zeta", LanguagesURL: "https://api.example/repos/alice/zeta/languages"},
				{Owner: "alice", Name: "alpha", LanguagesURL: "https://api.example/repos/alice/alpha/languages"},
			},
		},
		{
			name: "empty listing",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[]`)
			},
			expected: []domain.RepositoryHandle{},
		},
		{
			name: "error case - user not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectError:    true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "error case - server error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			handles, err := gateway.ListRepositories(context.Background(), "alice")
			if tc.expectError {
				var enumErr *domain.EnumerationError
				require.ErrorAs(t, err, &enumErr)
				assert.Equal(t, tc.expectedStatus, enumErr.Status)
				assert.Contains(t, err.Error(), fmt.Sprint(tc.expectedStatus))
				assert.Nil(t, handles)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, handles)
		})
	}
}

func TestGitHubGateway_ListRepositories_TransportFailure(t *testing.T) {
	gateway, server := setupTestGateway(t, http.NotFoundHandler())
	server.Close()

	_, err := gateway.ListRepositories(context.Background(), "alice")

	var enumErr *domain.EnumerationError
	require.ErrorAs(t, err, &enumErr)
	assert.Zero(t, enumErr.Status)
}

func TestGitHubGateway_FetchLanguages(t *testing.T) {
	t.Run("follows languages_url", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/custom/languages/proj", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Go": 1200, "Rust": 300}`)
		})
		gateway, server := setupTestGateway(t, mux)
		defer server.Close()

		languages, err := gateway.FetchLanguages(context.Background(), domain.RepositoryHandle{
			Owner:        "alice",
			Name:         "proj",
			LanguagesURL: server.URL + "/custom/languages/proj",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.NewLanguageSet("Go", "Rust"), languages)
	})

	t.Run("falls back to repository endpoint", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/alice/proj/languages", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Python": 10}`)
		})
		gateway, server := setupTestGateway(t, mux)
		defer server.Close()

		languages, err := gateway.FetchLanguages(context.Background(), domain.RepositoryHandle{Owner: "alice", Name: "proj"})
		require.NoError(t, err)
		assert.Equal(t, domain.NewLanguageSet("Python"), languages)
	})

	t.Run("error case - endpoint fails", func(t *testing.T) {
		gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "Forbidden"}`)
		}))
		defer server.Close()

		_, err := gateway.FetchLanguages(context.Background(), domain.RepositoryHandle{Owner: "alice", Name: "proj"})
		assert.ErrorContains(t, err, "failed to fetch languages for proj")
	})
}

func TestGitHubGateway_FetchCommits(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []domain.CommitRecord
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - reads author display names",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/alice/proj/commits", r.URL.Path)
				fmt.Fprint(w, `[
					{"sha": "a1", "commit": {"author": {"name": "alice"}}, "author": {"login": "alice"}},
					{"sha": "b2", "commit": {"author": {"name": "bob"}}},
					{"sha": "c3", "commit": {"author": {"name": "Alice"}}, "author": {"login": "alice"}}
				]`)
			},
			expected: []domain.CommitRecord{
				{SHA: "a1", AuthorName: "alice", AuthorLogin: "alice"},
				{SHA: "b2", AuthorName: "bob"},
				{SHA: "c3", AuthorName: "Alice", AuthorLogin: "alice"},
			},
		},
		{
			name: "error case - empty repository",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"message": "Git Repository is empty."}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to fetch commits for proj",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			commits, err := gateway.FetchCommits(context.Background(), domain.RepositoryHandle{Owner: "alice", Name: "proj"})
			if tc.expectError {
				assert.ErrorContains(t, err, tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, commits)
		})
	}
}
