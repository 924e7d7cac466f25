// Package journal defines the shared-journal records exchanged with the
// persistence collaborator: spaces, posts, likes and comments.
package journal

import (
	"fmt"
	"strings"
)

// PostType identifies what kind of entry a post is.
type PostType string

const (
	// TypeText is a plain written entry.
	TypeText PostType = "text"
	// TypeMood records how the author feels, with a Mood attached.
	TypeMood PostType = "mood"
	// TypeMemory is a shared memory worth keeping.
	TypeMemory PostType = "memory"
	// TypePhoto is a photo entry.
	TypePhoto PostType = "photo"
)

var postTypeLabels = map[PostType]string{
	TypeText:   "文字",
	TypeMood:   "心情",
	TypeMemory: "回忆",
	TypePhoto:  "照片",
}

// AllPostTypes returns the supported post types in display order.
func AllPostTypes() []PostType {
	return []PostType{TypeText, TypeMood, TypeMemory, TypePhoto}
}

// ParsePostType converts a string to a PostType. Blank input is text.
func ParsePostType(raw string) (PostType, error) {
	t := PostType(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return TypeText, nil
	}
	if _, ok := postTypeLabels[t]; ok {
		return t, nil
	}
	return TypeText, fmt.Errorf("journal: unknown post type %q", raw)
}

// Label returns the display label, or the raw key for unknown types.
func (t PostType) Label() string {
	if l, ok := postTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Mood is one of the fixed mood keys a mood post may carry.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodLove     Mood = "love"
	MoodExcited  Mood = "excited"
	MoodPeaceful Mood = "peaceful"
	MoodGrateful Mood = "grateful"
	MoodSad      Mood = "sad"
	MoodWorried  Mood = "worried"
	MoodTired    Mood = "tired"

	// DefaultMood is preselected in the composer.
	DefaultMood = MoodHappy

	// OtherMoodLabel buckets mood keys without a label.
	OtherMoodLabel = "其他"
	// GenericMoodLabel is shown on a mood post whose key has no label.
	GenericMoodLabel = "心情"
)

var moodLabels = map[Mood]string{
	MoodHappy:    "开心",
	MoodLove:     "爱意",
	MoodExcited:  "兴奋",
	MoodPeaceful: "平静",
	MoodGrateful: "感激",
	MoodSad:      "难过",
	MoodWorried:  "担心",
	MoodTired:    "疲惫",
}

// AllMoods returns the mood keys in composer order.
func AllMoods() []Mood {
	return []Mood{
		MoodHappy, MoodLove, MoodExcited, MoodPeaceful,
		MoodGrateful, MoodSad, MoodWorried, MoodTired,
	}
}

// ParseMood converts a string to a known Mood.
func ParseMood(raw string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := moodLabels[m]; ok {
		return m, nil
	}
	return "", fmt.Errorf("journal: unknown mood %q", raw)
}

// Label returns the display label and whether the key is known.
func (m Mood) Label() (string, bool) {
	l, ok := moodLabels[m]
	return l, ok
}
