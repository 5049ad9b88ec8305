package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moodpair/moodpair/internal/db"
)

func day(offset int) time.Time {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestPostingFrequency(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		assert.Equal(t, 0.0, postingFrequency(nil))
	})

	t.Run("single entry", func(t *testing.T) {
		entries := []db.DiaryEntry{{Date: day(0)}}
		assert.Equal(t, 0.0, postingFrequency(entries))
	})

	t.Run("three entries over five days", func(t *testing.T) {
		entries := []db.DiaryEntry{
			{Date: day(0)},
			{Date: day(2)},
			{Date: day(4)},
		}
		assert.InDelta(t, 0.6, postingFrequency(entries), 1e-9)
	})

	t.Run("order independent", func(t *testing.T) {
		entries := []db.DiaryEntry{
			{Date: day(4)},
			{Date: day(0)},
			{Date: day(2)},
		}
		assert.InDelta(t, 0.6, postingFrequency(entries), 1e-9)
	})

	t.Run("all entries same day", func(t *testing.T) {
		entries := []db.DiaryEntry{
			{Date: day(1)},
			{Date: day(1)},
			{Date: day(1)},
		}
		assert.Equal(t, 3.0, postingFrequency(entries))
	})
}

func TestExtractKeywords(t *testing.T) {
	entries := []db.DiaryEntry{
		{Content: "Watching the Olympic games today"},
		{Content: "up at 6am for a run in to town"},
	}

	keywords := extractKeywords(entries)

	assert.Contains(t, keywords, "watching")
	assert.Contains(t, keywords, "olympic")
	assert.Contains(t, keywords, "games")
	assert.Contains(t, keywords, "today")
	assert.Contains(t, keywords, "town")

	// stop word, even though long enough would not matter here
	assert.NotContains(t, keywords, "the")
	// three characters or fewer
	assert.NotContains(t, keywords, "run")
	assert.NotContains(t, keywords, "6am")
	// tokens are lower-cased before insertion
	assert.NotContains(t, keywords, "Olympic")
}

func TestWeatherHistogram(t *testing.T) {
	t.Run("all tags present with zero default", func(t *testing.T) {
		counts := weatherHistogram(nil)
		assert.Len(t, counts, len(db.WeatherTags))
		for _, tag := range db.WeatherTags {
			assert.Equal(t, 0, counts[tag])
		}
	})

	t.Run("counts per tag", func(t *testing.T) {
		moods := []db.MoodEntry{
			{Weather: db.WeatherSunny},
			{Weather: db.WeatherSunny},
			{Weather: db.WeatherRainy},
			{Weather: "volcanic"}, // unknown tags are ignored
		}
		counts := weatherHistogram(moods)
		assert.Equal(t, 2, counts[db.WeatherSunny])
		assert.Equal(t, 1, counts[db.WeatherRainy])
		assert.Equal(t, 0, counts[db.WeatherCloudy])
		assert.NotContains(t, counts, "volcanic")
	})
}

func TestAvgMoodScore(t *testing.T) {
	assert.Equal(t, 0.0, avgMoodScore(nil))

	moods := []db.MoodEntry{{Score: 2}, {Score: 5}}
	assert.InDelta(t, 3.5, avgMoodScore(moods), 1e-9)
}

func TestExtractFeatures(t *testing.T) {
	entries := []db.DiaryEntry{
		{Date: day(0), Content: "olympic games"},
		{Date: day(1), Content: "more games"},
	}
	moods := []db.MoodEntry{{Score: 4, Weather: db.WeatherSunny}}

	f := ExtractFeatures(7, entries, moods, 12)

	assert.Equal(t, uint64(7), f.UserID)
	assert.Equal(t, 1.0, f.PostingFrequency)
	assert.Contains(t, f.Keywords, "olympic")
	assert.Contains(t, f.Keywords, "games")
	assert.Equal(t, int64(12), f.LikeCount)
	assert.Equal(t, 1, f.WeatherCounts[db.WeatherSunny])
	assert.Equal(t, 4.0, f.AvgMoodScore)
}
