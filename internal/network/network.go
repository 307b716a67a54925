package network

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// JustNow is the timestamp assigned to freshly created content.
const JustNow = "Just now"

type AppreciationType string

const (
	AppreciationHelpful            AppreciationType = "helpful"
	AppreciationThoughtProvoking   AppreciationType = "thoughtProvoking"
	AppreciationCollaborationReady AppreciationType = "collaborationReady"
)

// Data is the generated network snapshot kept per session.
type Data struct {
	Users   []*User   `json:"users"`
	Posts   []*Post   `json:"posts"`
	Circles []*Circle `json:"circles"`
	Jobs    []*Job    `json:"jobs"`
}

type User struct {
	ID                int         `json:"id"`
	Name              string      `json:"name"`
	Headline          string      `json:"headline,omitempty"`
	Bio               string      `json:"bio,omitempty"`
	AvatarURL         string      `json:"avatarUrl,omitempty"`
	Industry          string      `json:"industry,omitempty"`
	ProfessionalGoals []string    `json:"professionalGoals,omitempty"`
	Reputation        int         `json:"reputation"`
	IsRecruiter       bool        `json:"isRecruiter"`
	Values            []string    `json:"values,omitempty"`
	Availability      string      `json:"availability,omitempty"`
	WorkStyle         *WorkStyle  `json:"workStyle,omitempty"`
	Skills            []UserSkill `json:"skills,omitempty"`
}

type WorkStyle struct {
	Collaboration string `json:"collaboration,omitempty"`
	Communication string `json:"communication,omitempty"`
	WorkPace      string `json:"workPace,omitempty"`
}

type UserSkill struct {
	Name         string `json:"name"`
	Endorsements int    `json:"endorsements"`
}

// Appreciations holds the three reaction tiers a post can receive.
type Appreciations struct {
	Helpful            int `json:"helpful"`
	ThoughtProvoking   int `json:"thoughtProvoking"`
	CollaborationReady int `json:"collaborationReady"`
}

type Post struct {
	ID            int           `json:"id"`
	AuthorID      int           `json:"authorId"`
	Content       string        `json:"content"`
	Appreciations Appreciations `json:"appreciations"`
	Comments      int           `json:"comments"`
	Shares        int           `json:"shares"`
	Timestamp     string        `json:"timestamp"`
	CircleID      *int          `json:"circleId,omitempty"`
}

type Circle struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Members     []int  `json:"members,omitempty"`
	AdminID     int    `json:"adminId"`
}

type Job struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Company         string `json:"company,omitempty"`
	Location        string `json:"location,omitempty"`
	Description     string `json:"description,omitempty"`
	Type            string `json:"type,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	RecruiterID     int    `json:"recruiterId"`
}

// InCircle reports whether the post is bound to a sub-community. Circle ids
// start at 1, a zero id means the post is public.
func (p *Post) InCircle() bool {
	return p != nil && p.CircleID != nil && *p.CircleID != 0
}

// Appreciate increments the counter for the given appreciation type.
func (p *Post) Appreciate(kind AppreciationType) error {
	switch kind {
	case AppreciationHelpful:
		p.Appreciations.Helpful++
	case AppreciationThoughtProvoking:
		p.Appreciations.ThoughtProvoking++
	case AppreciationCollaborationReady:
		p.Appreciations.CollaborationReady++
	default:
		return fmt.Errorf("unknown appreciation type: %q", kind)
	}
	return nil
}

func (d *Data) FindUser(id int) *User {
	for _, u := range d.Users {
		if u != nil && u.ID == id {
			return u
		}
	}
	return nil
}

func (d *Data) FindPost(id int) *Post {
	for _, p := range d.Posts {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

func (d *Data) FindCircle(id int) *Circle {
	for _, c := range d.Circles {
		if c != nil && c.ID == id {
			return c
		}
	}
	return nil
}

// UserIDs returns the set of user ids present in the snapshot.
func (d *Data) UserIDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(d.Users))
	for _, u := range d.Users {
		if u != nil {
			ids[u.ID] = struct{}{}
		}
	}
	return ids
}

// Candidates returns every non-recruiter user.
func (d *Data) Candidates() []*User {
	users := make([]*User, 0, len(d.Users))
	for _, u := range d.Users {
		if u != nil && !u.IsRecruiter {
			users = append(users, u)
		}
	}
	return users
}

// PromoteUser moves the given user to the front of the user list, adding it
// when the snapshot does not know about it yet.
func (d *Data) PromoteUser(user *User) {
	if user == nil {
		return
	}

	users := make([]*User, 0, len(d.Users)+1)
	users = append(users, user)
	for _, u := range d.Users {
		if u == nil || u.ID == user.ID {
			continue
		}
		users = append(users, u)
	}
	d.Users = users
}

// AddPost prepends a new post authored by authorID. The post starts with no
// engagement and the JustNow timestamp.
func (d *Data) AddPost(authorID int, content string, circleID *int) *Post {
	post := &Post{
		ID:        d.nextPostID(),
		AuthorID:  authorID,
		Content:   content,
		Timestamp: JustNow,
	}
	if circleID != nil && *circleID != 0 {
		id := *circleID
		post.CircleID = &id
	}
	d.Posts = append([]*Post{post}, d.Posts...)
	return post
}

// AddMember adds userID to the circle. It reports whether the member list
// changed.
func (c *Circle) AddMember(userID int) bool {
	if c.HasMember(userID) {
		return false
	}
	c.Members = append(c.Members, userID)
	return true
}

// RemoveMember drops userID from the circle. The admin always stays.
func (c *Circle) RemoveMember(userID int) error {
	if userID == c.AdminID {
		return fmt.Errorf("user %d administers circle %d", userID, c.ID)
	}
	c.Members = slices.DeleteFunc(c.Members, func(id int) bool { return id == userID })
	return nil
}

func (c *Circle) HasMember(userID int) bool {
	return slices.Contains(c.Members, userID)
}

func (d *Data) nextPostID() int {
	next := 1
	for _, p := range d.Posts {
		if p != nil && p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

// DumpToTmpFile writes posts as indented JSON into a temporary file and
// returns its name.
func DumpToTmpFile(posts []*Post) (string, error) {
	file, err := os.CreateTemp("", "feed_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return "", err
	}
	return file.Name(), nil
}
