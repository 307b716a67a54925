package network

// PredictiveScores are the model's 0-100 estimates for a candidate.
type PredictiveScores struct {
	RoleFit                int `json:"roleFit"`
	CultureFit             int `json:"cultureFit"`
	MutualSuccessPotential int `json:"mutualSuccessPotential"`
}

type CandidateAnalysis struct {
	MatchReasoning     string           `json:"matchReasoning"`
	Strengths          []string         `json:"strengths"`
	PotentialRedFlags  []string         `json:"potentialRedFlags"`
	CultureFitAnalysis string           `json:"cultureFitAnalysis"`
	PersonalityMarkers []string         `json:"personalityMarkers"`
	PredictiveScores   PredictiveScores `json:"predictiveScores"`
	InterviewQuestions []string         `json:"interviewQuestions"`
}

// SearchResult is a single entry of a candidate search as returned by the model.
type SearchResult struct {
	UserID   int               `json:"userId"`
	Analysis CandidateAnalysis `json:"aiAnalysis"`
}

// CandidateMatch binds a search result to the profile it refers to.
type CandidateMatch struct {
	User     *User             `json:"user"`
	Analysis CandidateAnalysis `json:"aiAnalysis"`
}

// MutualSuccess returns the mutual-success-potential score, zero for nil matches.
func (m *CandidateMatch) MutualSuccess() int {
	if m == nil {
		return 0
	}
	return m.Analysis.PredictiveScores.MutualSuccessPotential
}

// ResolveMatches joins search results with known users. Results referring to
// unknown users are dropped; the result order is kept.
func ResolveMatches(results []*SearchResult, users []*User) []*CandidateMatch {
	byID := make(map[int]*User, len(users))
	for _, u := range users {
		if u != nil {
			byID[u.ID] = u
		}
	}

	matches := make([]*CandidateMatch, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		user, ok := byID[r.UserID]
		if !ok {
			continue
		}
		matches = append(matches, &CandidateMatch{User: user, Analysis: r.Analysis})
	}
	return matches
}
