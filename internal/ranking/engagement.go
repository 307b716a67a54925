// Package ranking orders feed posts by time-decayed engagement and candidate
// matches by their mutual success potential.
//
// Every function in the package is pure: inputs are never mutated and a new
// slice is returned, so callers may rank concurrently without locking.
package ranking

import "github.com/spigell/bewatu/internal/network"

// Engagement weights. Thought-provoking appreciations are the most valuable
// reaction and weigh the most.
const (
	HelpfulWeight            = 1.5
	ThoughtProvokingWeight   = 2.5
	CollaborationReadyWeight = 2.0
	CommentWeight            = 1.2
	ShareWeight              = 1.0
)

// ScoreEngagement returns the weighted engagement value of a post.
// Counters are expected to be non-negative.
func ScoreEngagement(helpful, thoughtProvoking, collaborationReady, comments, shares int) float64 {
	appreciations := float64(helpful)*HelpfulWeight +
		float64(thoughtProvoking)*ThoughtProvokingWeight +
		float64(collaborationReady)*CollaborationReadyWeight
	engagement := float64(comments)*CommentWeight + float64(shares)*ShareWeight
	return appreciations + engagement
}

// PostScore is ScoreEngagement over the counters of a post.
func PostScore(p *network.Post) float64 {
	if p == nil {
		return 0
	}
	return ScoreEngagement(
		p.Appreciations.Helpful,
		p.Appreciations.ThoughtProvoking,
		p.Appreciations.CollaborationReady,
		p.Comments,
		p.Shares,
	)
}
