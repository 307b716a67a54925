package ranking

import (
	"cmp"
	"slices"

	"github.com/spigell/bewatu/internal/network"
)

// RankCandidates orders matches by mutual success potential, highest first.
// Role and culture fit are not used, not even to break ties:
// equal scores keep their input order. Nil matches sink to the end.
func RankCandidates(matches []*network.CandidateMatch) []*network.CandidateMatch {
	ordered := slices.Clone(matches)
	if ordered == nil {
		ordered = []*network.CandidateMatch{}
	}

	slices.SortStableFunc(ordered, func(a, b *network.CandidateMatch) int {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		case b == nil:
			return -1
		}
		return cmp.Compare(b.MutualSuccess(), a.MutualSuccess())
	})
	return ordered
}
