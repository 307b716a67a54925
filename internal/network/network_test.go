package network

import (
	"encoding/json"
	"os"
	"testing"
)

func TestDecodeDataSanitizesCounters(t *testing.T) {
	raw := "```json\n" + `{
		"users": [{"id": 1, "name": "Ada"}, null],
		"posts": [
			{"id": "7", "authorId": 1, "content": "hi", "appreciations": {"helpful": "3", "thoughtProvoking": -2}, "comments": 4.0, "shares": -1, "timestamp": " 2 hours ago "},
			{"id": 8, "authorId": 1, "appreciations": {}, "timestamp": "Just now", "circleId": 3},
			null
		],
		"circles": [{"id": 3, "name": "Gophers", "members": [1]}]
	}` + "\n```"

	data, err := DecodeData(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data.Users) != 1 {
		t.Fatalf("expected nil users to be dropped, got %d", len(data.Users))
	}

	if len(data.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(data.Posts))
	}

	first := data.Posts[0]
	if first.ID != 7 {
		t.Fatalf("expected string id to be decoded, got %d", first.ID)
	}
	if first.Appreciations.Helpful != 3 {
		t.Fatalf("expected helpful=3, got %d", first.Appreciations.Helpful)
	}
	if first.Appreciations.ThoughtProvoking != 0 {
		t.Fatalf("expected negative counter clamped to 0, got %d", first.Appreciations.ThoughtProvoking)
	}
	if first.Shares != 0 || first.Comments != 4 {
		t.Fatalf("unexpected engagement counters: comments=%d shares=%d", first.Comments, first.Shares)
	}
	if first.Timestamp != "2 hours ago" {
		t.Fatalf("expected trimmed timestamp, got %q", first.Timestamp)
	}
	if first.InCircle() {
		t.Fatalf("expected first post to be global")
	}

	second := data.Posts[1]
	if !second.InCircle() || *second.CircleID != 3 {
		t.Fatalf("expected second post to belong to circle 3, got %+v", second.CircleID)
	}
}

func TestDecodeDataTreatsZeroCircleAsPublic(t *testing.T) {
	raw := `{
		"users": [{"id": 1, "name": "Ada"}],
		"posts": [
			{"id": 1, "authorId": 1, "appreciations": {"helpful": 5}, "timestamp": "1 hour ago", "circleId": 0},
			{"id": 2, "authorId": 1, "appreciations": {}, "timestamp": "2 hours ago", "circleId": null},
			{"id": 3, "authorId": 1, "appreciations": {}, "timestamp": "3 hours ago", "circleId": "0"}
		],
		"circles": [null, {"id": 3, "name": "Gophers", "adminId": 1}],
		"jobs": [{"id": 1, "title": "Go engineer"}, null]
	}`

	data, err := DecodeData(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range data.Posts {
		if p.InCircle() || p.CircleID != nil {
			t.Fatalf("expected post %d to be public, got circle %v", p.ID, *p.CircleID)
		}
	}
	if len(data.Circles) != 1 || len(data.Jobs) != 1 {
		t.Fatalf("expected nil circles and jobs to be dropped, got %d circles and %d jobs", len(data.Circles), len(data.Jobs))
	}
}

func TestInCircle(t *testing.T) {
	zero, three := 0, 3

	tests := []struct {
		name   string
		post   *Post
		expect bool
	}{
		{name: "nil post", post: nil, expect: false},
		{name: "no circle", post: &Post{}, expect: false},
		{name: "zero circle", post: &Post{CircleID: &zero}, expect: false},
		{name: "circle", post: &Post{CircleID: &three}, expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.post.InCircle(); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestDecodeDataRejectsGarbage(t *testing.T) {
	if _, err := DecodeData("not json at all"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDecodeSearchResultsClampsScores(t *testing.T) {
	raw := `[
		{"userId": 2, "aiAnalysis": {"matchReasoning": "strong", "predictiveScores": {"roleFit": 140, "cultureFit": "55", "mutualSuccessPotential": -4}}},
		{"userId": "3", "aiAnalysis": {"predictiveScores": {}}}
	]`

	results, err := DecodeSearchResults(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	scores := results[0].Analysis.PredictiveScores
	if scores.RoleFit != 100 || scores.CultureFit != 55 || scores.MutualSuccessPotential != 0 {
		t.Fatalf("unexpected clamped scores: %+v", scores)
	}

	if results[1].UserID != 3 {
		t.Fatalf("expected weakly typed user id, got %d", results[1].UserID)
	}
	if results[1].Analysis.PredictiveScores.MutualSuccessPotential != 0 {
		t.Fatalf("expected missing score to default to 0")
	}
}

func TestResolveMatchesDropsUnknownUsers(t *testing.T) {
	users := []*User{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Linus"}}
	results := []*SearchResult{
		{UserID: 2},
		{UserID: 42},
		nil,
		{UserID: 1},
	}

	matches := ResolveMatches(results, users)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].User.Name != "Linus" || matches[1].User.Name != "Ada" {
		t.Fatalf("unexpected order: %s, %s", matches[0].User.Name, matches[1].User.Name)
	}
}

func TestPromoteUser(t *testing.T) {
	data := &Data{Users: []*User{{ID: 1}, {ID: 2}, {ID: 3}}}

	data.PromoteUser(&User{ID: 3, Name: "me"})
	if data.Users[0].ID != 3 || len(data.Users) != 3 {
		t.Fatalf("expected existing user to move to front: %+v", data.Users)
	}
	if data.Users[0].Name != "me" {
		t.Fatalf("expected promoted user value to win")
	}

	data.PromoteUser(&User{ID: 9})
	if data.Users[0].ID != 9 || len(data.Users) != 4 {
		t.Fatalf("expected new user to be prepended: %+v", data.Users)
	}
}

func TestAddPostAndAppreciate(t *testing.T) {
	data := &Data{Posts: []*Post{{ID: 4}, {ID: 10}}}
	circle := 2

	post := data.AddPost(1, "hello circle", &circle)
	if post.ID != 11 {
		t.Fatalf("expected next id 11, got %d", post.ID)
	}
	if post.Timestamp != JustNow {
		t.Fatalf("expected %q timestamp, got %q", JustNow, post.Timestamp)
	}
	if data.Posts[0] != post {
		t.Fatalf("expected new post to be first")
	}

	for _, kind := range []AppreciationType{AppreciationHelpful, AppreciationThoughtProvoking, AppreciationThoughtProvoking, AppreciationCollaborationReady} {
		if err := post.Appreciate(kind); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := Appreciations{Helpful: 1, ThoughtProvoking: 2, CollaborationReady: 1}
	if post.Appreciations != want {
		t.Fatalf("unexpected appreciations: %+v", post.Appreciations)
	}

	if err := post.Appreciate("insightful"); err == nil {
		t.Fatal("expected error for unknown appreciation type")
	}

	zero := 0
	public := data.AddPost(1, "hello everyone", &zero)
	if public.InCircle() || public.CircleID != nil {
		t.Fatalf("expected zero circle id to create a public post, got %v", *public.CircleID)
	}

	circle = 5
	if *post.CircleID != 2 {
		t.Fatalf("expected post to keep its own copy of the circle id, got %d", *post.CircleID)
	}
}

func TestCircleMembers(t *testing.T) {
	c := &Circle{ID: 3, AdminID: 1, Members: []int{1, 2}}

	if c.AddMember(2) {
		t.Fatal("expected existing member to be left alone")
	}
	if !c.AddMember(5) || !c.HasMember(5) {
		t.Fatalf("expected 5 to join, got %v", c.Members)
	}

	if err := c.RemoveMember(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasMember(2) {
		t.Fatalf("expected 2 to leave, got %v", c.Members)
	}

	if err := c.RemoveMember(42); err != nil {
		t.Fatalf("removing a stranger must be a no-op, got %v", err)
	}

	if err := c.RemoveMember(1); err == nil {
		t.Fatal("expected the admin to stay")
	}
	if !c.HasMember(1) {
		t.Fatalf("admin must stay a member, got %v", c.Members)
	}
}

func TestCandidates(t *testing.T) {
	data := &Data{Users: []*User{{ID: 1, IsRecruiter: true}, {ID: 2}, nil, {ID: 3}}}

	got := data.Candidates()
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	posts := []*Post{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}

	name, err := DumpToTmpFile(posts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(name)

	content, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var decoded []*Post
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("dump is not valid json: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Content != "b" {
		t.Fatalf("unexpected dump content: %s", content)
	}
}
