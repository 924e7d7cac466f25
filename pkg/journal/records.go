package journal

import (
	"errors"
	"strings"
	"time"

	"tableflip.dev/lovenote/pkg/timeutil"
)

var (
	ErrEmptyContent = errors.New("journal: content is empty")
	ErrMissingField = errors.New("journal: required field missing")
	ErrSamePartners = errors.New("journal: partner names must differ")
)

// Space is the private two-person journal. Secret is its only credential.
type Space struct {
	ID               string         `json:"id"`
	SpaceName        string         `json:"space_name"`
	Secret           string         `json:"secret"`
	Partner1Name     string         `json:"partner1_name"`
	Partner2Name     string         `json:"partner2_name"`
	AnniversaryDate  *timeutil.Date `json:"anniversary_date"`
	Partner1Birthday *timeutil.Date `json:"partner1_birthday"`
	Partner2Birthday *timeutil.Date `json:"partner2_birthday"`
	CreatedAt        time.Time      `json:"created_at,omitempty"`
}

// Partners returns both partner names.
func (s *Space) Partners() []string {
	if s == nil {
		return nil
	}
	return []string{s.Partner1Name, s.Partner2Name}
}

// HasPartner reports whether name exactly matches one of the partners.
func (s *Space) HasPartner(name string) bool {
	if s == nil || name == "" {
		return false
	}
	return name == s.Partner1Name || name == s.Partner2Name
}

// SpaceFields is the create-space form.
type SpaceFields struct {
	SpaceName        string         `json:"space_name"`
	Secret           string         `json:"secret"`
	Partner1Name     string         `json:"partner1_name"`
	Partner2Name     string         `json:"partner2_name"`
	AnniversaryDate  *timeutil.Date `json:"anniversary_date"`
	Partner1Birthday *timeutil.Date `json:"partner1_birthday"`
	Partner2Birthday *timeutil.Date `json:"partner2_birthday"`
}

// Validate trims the form and checks the required fields.
func (f *SpaceFields) Validate() error {
	f.SpaceName = strings.TrimSpace(f.SpaceName)
	f.Secret = strings.TrimSpace(f.Secret)
	f.Partner1Name = strings.TrimSpace(f.Partner1Name)
	f.Partner2Name = strings.TrimSpace(f.Partner2Name)
	switch {
	case f.SpaceName == "", f.Secret == "", f.Partner1Name == "", f.Partner2Name == "":
		return ErrMissingField
	case f.Partner1Name == f.Partner2Name:
		return ErrSamePartners
	}
	return nil
}

// Like marks that AuthorName likes a post. At most one per (post, author).
type Like struct {
	ID         string `json:"id"`
	PostID     string `json:"post_id,omitempty"`
	AuthorName string `json:"author_name"`
}

// Comment is an append-only reply on a post.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id,omitempty"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is an immutable journal entry with its likes and comments nested.
type Post struct {
	ID         string    `json:"id"`
	SpaceID    string    `json:"space_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	PostType   PostType  `json:"post_type"`
	MoodType   *Mood     `json:"mood_type"`
	IsPrivate  bool      `json:"is_private"`
	CreatedAt  time.Time `json:"created_at"`
	Likes      []Like    `json:"likes"`
	Comments   []Comment `json:"comments"`
}

// LikeCount is the number of likes on the post.
func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// LikedBy reports whether name has liked the post.
func (p *Post) LikedBy(name string) bool {
	for _, l := range p.Likes {
		if l.AuthorName == name {
			return true
		}
	}
	return false
}

// IsMine reports whether name authored the post.
func (p *Post) IsMine(name string) bool {
	return name != "" && p.AuthorName == name
}

// Mood returns the post's mood, only ever set on mood posts.
func (p *Post) Mood() (Mood, bool) {
	if p.PostType != TypeMood || p.MoodType == nil || *p.MoodType == "" {
		return "", false
	}
	return *p.MoodType, true
}

// MoodLabel is the chip shown on a mood post; empty for other posts.
func (p *Post) MoodLabel() string {
	m, ok := p.Mood()
	if !ok {
		return ""
	}
	if l, ok := m.Label(); ok {
		return l
	}
	return GenericMoodLabel
}

// SearchText is the text the feed search matches against.
func (p *Post) SearchText() string {
	parts := []string{p.Content, p.AuthorName, string(p.PostType), p.PostType.Label()}
	if m, ok := p.Mood(); ok {
		parts = append(parts, string(m), p.MoodLabel())
	}
	return strings.Join(parts, " ")
}

// NewPost is the composer payload.
type NewPost struct {
	SpaceID    string
	AuthorName string
	Content    string
	PostType   PostType
	Mood       Mood
	IsPrivate  bool
}

// Normalize trims the content, defaults the type and keeps a mood only on
// mood posts.
func (n *NewPost) Normalize() error {
	n.Content = strings.TrimSpace(n.Content)
	if n.Content == "" {
		return ErrEmptyContent
	}
	if n.PostType == "" {
		n.PostType = TypeText
	}
	if n.PostType != TypeMood {
		n.Mood = ""
		return nil
	}
	if n.Mood == "" {
		n.Mood = DefaultMood
	}
	return nil
}

// MoodPtr returns the mood to persist, nil for non-mood posts.
func (n *NewPost) MoodPtr() *Mood {
	if n.PostType != TypeMood || n.Mood == "" {
		return nil
	}
	m := n.Mood
	return &m
}
