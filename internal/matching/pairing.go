package matching

// Pair is one emitted pairing from a greedy run.
type Pair struct {
	A UserFeatures
	B UserFeatures
	// Score is the similarity that selected B for A.
	Score float64
}

// PairUp greedily assembles pairs from the candidate list: take the first
// remaining candidate, scan the rest for the highest-scoring partner
// (ties broken by list order, first seen wins), remove both, emit the pair.
// Single pass, no reinsertion, no backtracking; with an odd pool one
// candidate is left unpaired.
//
// The input order fully determines the output, so a run is deterministic
// for identical inputs.
func PairUp(candidates []UserFeatures, targetKeyword string) []Pair {
	remaining := make([]UserFeatures, len(candidates))
	copy(remaining, candidates)

	pairs := make([]Pair, 0, len(remaining)/2)
	for len(remaining) >= 2 {
		u := remaining[0]
		remaining = remaining[1:]

		bestIdx, bestScore := 0, Similarity(u, remaining[0], targetKeyword)
		for i := 1; i < len(remaining); i++ {
			if score := Similarity(u, remaining[i], targetKeyword); score > bestScore {
				bestIdx, bestScore = i, score
			}
		}

		best := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		pairs = append(pairs, Pair{A: u, B: best, Score: bestScore})
	}
	return pairs
}
