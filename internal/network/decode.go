package network

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	minScore = 0
	maxScore = 100
)

// DecodeData parses a generated network snapshot. Model output is untrusted:
// numbers encoded as strings are accepted and counters are sanitized.
func DecodeData(raw string) (*Data, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parse network data: %w", err)
	}

	var data Data
	if err := weakDecode(payload, &data); err != nil {
		return nil, fmt.Errorf("decode network data: %w", err)
	}

	data.Sanitize()
	return &data, nil
}

// DecodeSearchResults parses a generated candidate search response.
func DecodeSearchResults(raw string) ([]*SearchResult, error) {
	var payload []any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parse candidate search: %w", err)
	}

	results := make([]*SearchResult, 0, len(payload))
	if err := weakDecode(payload, &results); err != nil {
		return nil, fmt.Errorf("decode candidate search: %w", err)
	}

	for _, r := range results {
		if r != nil {
			r.Analysis.PredictiveScores.clamp()
		}
	}
	return results, nil
}

// Sanitize drops nil entries and clamps counters that must not be negative.
// A zero circle id marks a public post.
func (d *Data) Sanitize() {
	posts := d.Posts[:0]
	for _, p := range d.Posts {
		if p == nil {
			continue
		}
		p.sanitize()
		posts = append(posts, p)
	}
	d.Posts = posts

	users := d.Users[:0]
	for _, u := range d.Users {
		if u != nil {
			users = append(users, u)
		}
	}
	d.Users = users

	circles := d.Circles[:0]
	for _, c := range d.Circles {
		if c != nil {
			circles = append(circles, c)
		}
	}
	d.Circles = circles

	jobs := d.Jobs[:0]
	for _, j := range d.Jobs {
		if j != nil {
			jobs = append(jobs, j)
		}
	}
	d.Jobs = jobs
}

func (p *Post) sanitize() {
	p.Appreciations.Helpful = nonNegative(p.Appreciations.Helpful)
	p.Appreciations.ThoughtProvoking = nonNegative(p.Appreciations.ThoughtProvoking)
	p.Appreciations.CollaborationReady = nonNegative(p.Appreciations.CollaborationReady)
	p.Comments = nonNegative(p.Comments)
	p.Shares = nonNegative(p.Shares)
	p.Timestamp = strings.TrimSpace(p.Timestamp)
	if p.CircleID != nil && *p.CircleID == 0 {
		p.CircleID = nil
	}
}

func (s *PredictiveScores) clamp() {
	s.RoleFit = clampScore(s.RoleFit)
	s.CultureFit = clampScore(s.CultureFit)
	s.MutualSuccessPotential = clampScore(s.MutualSuccessPotential)
}

func weakDecode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// extractJSON strips markdown code fences the model sometimes wraps around JSON.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampScore(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
