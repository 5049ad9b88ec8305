// Package matching implements the daily pairing engine: per-user feature
// extraction, pairwise similarity scoring and the greedy pairing assembler.
package matching

import (
	"strings"
	"time"

	"github.com/moodpair/moodpair/internal/db"
)

// stopWords are excluded from keyword sets.
var stopWords = map[string]struct{}{
	"and": {}, "the": {}, "is": {}, "in": {}, "to": {}, "for": {},
}

const minKeywordLen = 4

// UserFeatures is the immutable per-user input to the similarity scorer,
// computed once per run. Scoring never touches raw storage rows.
type UserFeatures struct {
	UserID           uint64
	PostingFrequency float64
	Keywords         map[string]struct{}
	LikeCount        int64
	WeatherCounts    map[string]int
	AvgMoodScore     float64
}

// ExtractFeatures derives a user's feature vector from their diary entries
// and side-channel aggregates over the trailing window.
func ExtractFeatures(userID uint64, entries []db.DiaryEntry, moods []db.MoodEntry, likeCount int64) UserFeatures {
	return UserFeatures{
		UserID:           userID,
		PostingFrequency: postingFrequency(entries),
		Keywords:         extractKeywords(entries),
		LikeCount:        likeCount,
		WeatherCounts:    weatherHistogram(moods),
		AvgMoodScore:     avgMoodScore(moods),
	}
}

// postingFrequency is entries per day over the span between the earliest
// and latest entry, inclusive. Zero or one entries give no span to measure,
// so the frequency is 0.
func postingFrequency(entries []db.DiaryEntry) float64 {
	if len(entries) <= 1 {
		return 0
	}
	earliest, latest := entries[0].Date, entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(earliest) {
			earliest = e.Date
		}
		if e.Date.After(latest) {
			latest = e.Date
		}
	}
	days := int(latest.Sub(earliest)/(24*time.Hour)) + 1
	return float64(len(entries)) / float64(days)
}

// extractKeywords collapses all entry content into a lower-cased token set,
// keeping tokens longer than three characters that are not stop words.
func extractKeywords(entries []db.DiaryEntry) map[string]struct{} {
	keywords := make(map[string]struct{})
	for _, e := range entries {
		for _, word := range strings.Fields(strings.ToLower(e.Content)) {
			if len(word) < minKeywordLen {
				continue
			}
			if _, stop := stopWords[word]; stop {
				continue
			}
			keywords[word] = struct{}{}
		}
	}
	return keywords
}

// weatherHistogram counts mood entries per weather tag. Every recognised
// tag is present in the result, missing ones at 0.
func weatherHistogram(moods []db.MoodEntry) map[string]int {
	counts := make(map[string]int, len(db.WeatherTags))
	for _, tag := range db.WeatherTags {
		counts[tag] = 0
	}
	for _, m := range moods {
		if _, ok := counts[m.Weather]; ok {
			counts[m.Weather]++
		}
	}
	return counts
}

func avgMoodScore(moods []db.MoodEntry) float64 {
	if len(moods) == 0 {
		return 0
	}
	sum := 0
	for _, m := range moods {
		sum += m.Score
	}
	return float64(sum) / float64(len(moods))
}
