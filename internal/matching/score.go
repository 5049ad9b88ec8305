package matching

import "math"

// Sub-score weights for the daily run. They sum to 1, and every sub-score
// lies in [0,1], so the total does too.
const (
	weightKeyword   = 0.25
	weightFrequency = 0.20
	weightLikes     = 0.15
	weightWeather   = 0.20
	weightMood      = 0.20

	// targetKeywordWeight boosts the run's target keyword over ordinary
	// keywords in the overlap computation.
	targetKeywordWeight = 3.0
)

// Similarity scores a candidate pair. targetKeyword may be empty.
// The function is symmetric: Similarity(a, b, k) == Similarity(b, a, k).
func Similarity(a, b UserFeatures, targetKeyword string) float64 {
	kw := keywordSimilarity(a.Keywords, b.Keywords, targetKeyword)
	freq := proximity(a.PostingFrequency, b.PostingFrequency)
	likes := proximity(float64(a.LikeCount), float64(b.LikeCount))
	weather := weatherSimilarity(a.WeatherCounts, b.WeatherCounts)
	mood := proximity(a.AvgMoodScore, b.AvgMoodScore)

	return weightKeyword*kw + weightFrequency*freq + weightLikes*likes + weightWeather*weather + weightMood*mood
}

// keywordSimilarity is a weighted Jaccard overlap: the target keyword
// carries weight 3, everything else weight 1. Empty union scores 0.
func keywordSimilarity(a, b map[string]struct{}, target string) float64 {
	var common, total float64
	for k := range a {
		w := keywordWeight(k, target)
		total += w
		if _, ok := b[k]; ok {
			common += w
		}
	}
	for k := range b {
		if _, ok := a[k]; ok {
			continue // already counted in the union
		}
		total += keywordWeight(k, target)
	}
	if total == 0 {
		return 0
	}
	return common / total
}

func keywordWeight(k, target string) float64 {
	if target != "" && k == target {
		return targetKeywordWeight
	}
	return 1.0
}

// proximity maps the absolute difference of two magnitudes into (0,1],
// saturating at 1 for equal values.
func proximity(x, y float64) float64 {
	return 1 / (1 + math.Abs(x-y))
}

// weatherSimilarity is the histogram overlap 2*Σ_w min(a[w],b[w]) / (Σa+Σb),
// 1 for identical non-empty histograms, 0 when both are empty.
func weatherSimilarity(a, b map[string]int) float64 {
	var overlap, totalA, totalB int
	for w, ca := range a {
		totalA += ca
		if cb, ok := b[w]; ok && cb < ca {
			overlap += cb
		} else if ok {
			overlap += ca
		}
	}
	for _, cb := range b {
		totalB += cb
	}
	if totalA+totalB == 0 {
		return 0
	}
	return 2 * float64(overlap) / float64(totalA+totalB)
}
