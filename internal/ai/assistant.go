package ai

import (
	"context"

	"github.com/spigell/bewatu/internal/network"
)

// NetworkRequest tunes the generated network snapshot.
type NetworkRequest struct {
	// Language is the ISO 639-1 code the content should be written in.
	Language string
}

// NetworkGenerator produces a whole network snapshot: users, posts, circles and jobs.
type NetworkGenerator interface {
	GenerateNetwork(ctx context.Context, req NetworkRequest) (*network.Data, error)
}

// CandidateSearcher asks the model to match a recruiter query against candidates.
// The returned results are not ordered in any meaningful way.
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, query string, candidates []*network.User) ([]*network.SearchResult, error)
}
