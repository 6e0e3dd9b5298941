// Package domain contains core domain types for the Manas application.
package domain

import "fmt"

// Mood is a classified emotional category.
type Mood string

const (
	MoodJoy          Mood = "joy"
	MoodSadness      Mood = "sadness"
	MoodAnger        Mood = "anger"
	MoodFear         Mood = "fear"
	MoodSurprise     Mood = "surprise"
	MoodDisgust      Mood = "disgust"
	MoodNeutral      Mood = "neutral"
	MoodUndetermined Mood = "undetermined"
)

var moods = map[Mood]bool{
	MoodJoy:          true,
	MoodSadness:      true,
	MoodAnger:        true,
	MoodFear:         true,
	MoodSurprise:     true,
	MoodDisgust:      true,
	MoodNeutral:      true,
	MoodUndetermined: true,
}

// ParseMood validates a mood label and returns the typed value.
func ParseMood(s string) (Mood, error) {
	m := Mood(s)
	if !moods[m] {
		return "", fmt.Errorf("unknown mood category %q", s)
	}
	return m, nil
}

// Valid reports whether the mood is one of the defined categories.
func (m Mood) Valid() bool {
	return moods[m]
}

// Primary reports whether the mood is one of the seven primary categories.
// "undetermined" is a per-turn fallback only; session summaries must use a
// primary category.
func (m Mood) Primary() bool {
	return moods[m] && m != MoodUndetermined
}
