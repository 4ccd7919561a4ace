package usecase

import (
	"strings"

	"github.com/naka-gawa/candidate-stats/internal/domain"
)

// AttributeCommits counts the commits whose author display name matches username.
// Names are compared after lower-casing both sides; nothing else is normalized.
func AttributeCommits(commits []domain.CommitRecord, username string) int {
	want := strings.ToLower(username)
	count := 0
	for _, c := range commits {
		if strings.ToLower(c.AuthorName) == want {
			count++
		}
	}
	return count
}
