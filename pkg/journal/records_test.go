package journal

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPostNormalizeDropsMoodOnTextPosts(t *testing.T) {
	n := NewPost{Content: "  hello  ", PostType: TypeText, Mood: MoodLove}
	if err := n.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if n.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", n.Content)
	}
	if n.MoodPtr() != nil {
		t.Fatalf("expected text post to carry no mood")
	}
}

func TestNewPostNormalizeDefaultsMood(t *testing.T) {
	n := NewPost{Content: "x", PostType: TypeMood}
	if err := n.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if m := n.MoodPtr(); m == nil || *m != MoodHappy {
		t.Fatalf("expected default mood happy, got %v", m)
	}
}

func TestNewPostNormalizeRejectsBlank(t *testing.T) {
	n := NewPost{Content: " \n\t"}
	if err := n.Normalize(); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestPostMoodLabel(t *testing.T) {
	love := MoodLove
	p := Post{PostType: TypeMood, MoodType: &love}
	if got := p.MoodLabel(); got != "爱意" {
		t.Fatalf("expected 爱意, got %q", got)
	}
	odd := Mood("sleepy")
	p.MoodType = &odd
	if got := p.MoodLabel(); got != GenericMoodLabel {
		t.Fatalf("expected generic label, got %q", got)
	}
	p.PostType = TypeText
	if got := p.MoodLabel(); got != "" {
		t.Fatalf("expected no label on text post, got %q", got)
	}
}

func TestPostLikedByExactName(t *testing.T) {
	p := Post{Likes: []Like{{AuthorName: "小明"}}}
	if !p.LikedBy("小明") {
		t.Fatalf("expected like by 小明")
	}
	if p.LikedBy("小明 ") {
		t.Fatalf("expected exact name match")
	}
}

func TestSearchTextIncludesLabels(t *testing.T) {
	love := MoodLove
	p := Post{Content: "walk", AuthorName: "A", PostType: TypeMood, MoodType: &love}
	text := p.SearchText()
	for _, want := range []string{"walk", "A", "mood", "心情", "love", "爱意"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
}

func TestSpaceFieldsValidate(t *testing.T) {
	f := SpaceFields{SpaceName: "s", Secret: "x", Partner1Name: "A", Partner2Name: " A "}
	if err := f.Validate(); !errors.Is(err, ErrSamePartners) {
		t.Fatalf("expected ErrSamePartners, got %v", err)
	}
	f.Partner2Name = ""
	if err := f.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	f.Partner2Name = "B"
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParsePostType(t *testing.T) {
	if pt, err := ParsePostType(""); err != nil || pt != TypeText {
		t.Fatalf("expected blank to be text, got %v %v", pt, err)
	}
	if _, err := ParsePostType("video"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if TypeMemory.Label() != "回忆" {
		t.Fatalf("unexpected label %s", TypeMemory.Label())
	}
}
