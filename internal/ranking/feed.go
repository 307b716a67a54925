package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/spigell/bewatu/internal/network"
)

// The decay follows the classic front-page formula. Both values are fixed.
const (
	AgeOffset = 2.0
	Gravity   = 1.8
)

// Rank combines an engagement score with an age in hours.
func Rank(score, hoursAgo float64) float64 {
	return score / math.Pow(hoursAgo+AgeOffset, Gravity)
}

// PostRank is the rank of a single post.
func PostRank(p *network.Post) float64 {
	if p == nil {
		return 0
	}
	return Rank(PostScore(p), ParseAge(p.Timestamp))
}

// GlobalOnly returns the posts that do not belong to a circle.
func GlobalOnly(posts []*network.Post) []*network.Post {
	global := make([]*network.Post, 0, len(posts))
	for _, p := range posts {
		if p == nil || p.InCircle() {
			continue
		}
		global = append(global, p)
	}
	return global
}

type rankedPost struct {
	post *network.Post
	rank float64
}

// RankFeed returns the global posts ordered by rank, highest first.
// Circle posts are left out. Posts with equal rank keep their input order.
func RankFeed(posts []*network.Post) []*network.Post {
	global := GlobalOnly(posts)

	ranked := make([]rankedPost, len(global))
	for i, p := range global {
		ranked[i] = rankedPost{post: p, rank: PostRank(p)}
	}

	slices.SortStableFunc(ranked, func(a, b rankedPost) int {
		return cmp.Compare(b.rank, a.rank)
	})

	for i, r := range ranked {
		global[i] = r.post
	}
	return global
}

// NewestFirst orders posts by age, youngest first, keeping input order for
// equal ages. Used for circle pages where engagement does not matter.
func NewestFirst(posts []*network.Post) []*network.Post {
	ordered := make([]*network.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			ordered = append(ordered, p)
		}
	}

	slices.SortStableFunc(ordered, func(a, b *network.Post) int {
		return cmp.Compare(ParseAge(a.Timestamp), ParseAge(b.Timestamp))
	})
	return ordered
}
