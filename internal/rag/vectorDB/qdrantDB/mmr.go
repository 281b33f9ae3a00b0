package qdrantDB

import "math"

// maximalMarginalRelevance picks up to k candidate indexes, each round taking
// the candidate with the best trade-off between similarity to the query and
// redundancy with what was already picked:
//
//	score = lambda*sim(query, c) - (1-lambda)*max(sim(c, selected))
//
// lambda=1 is pure relevance, lambda=0 pure diversity.
func maximalMarginalRelevance(query []float32, candidates [][]float32, lambda float32, k int) []int {
	if k > len(candidates) {
		k = len(candidates)
	}

	simToQuery := make([]float32, len(candidates))
	for i, c := range candidates {
		simToQuery[i] = cosineSimilarity(query, c)
	}

	chosen := make([]bool, len(candidates))
	var selected []int

	for len(selected) < k {
		best := -1
		bestScore := float32(math.Inf(-1))

		for i := range candidates {
			if chosen[i] {
				continue
			}

			var redundancy float32
			for _, j := range selected {
				if s := cosineSimilarity(candidates[i], candidates[j]); s > redundancy {
					redundancy = s
				}
			}

			score := lambda*simToQuery[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		if best == -1 {
			break
		}
		chosen[best] = true
		selected = append(selected, best)
	}

	return selected
}

func cosineSimilarity(a []float32, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
