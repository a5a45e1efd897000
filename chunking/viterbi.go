package chunking

import "math"

// allowed reports whether label to may follow label from. An empty from
// marks the start of the sequence.
func allowed(from, to string) bool {
	toPrefix, toSuffix := split(to)
	if toPrefix != 'I' {
		return true
	}
	if from == "" {
		return false
	}
	fromPrefix, fromSuffix := split(from)
	return fromPrefix != 'O' && fromSuffix == toSuffix
}

// Viterbi returns the highest scoring label sequence that is well formed
// under BIO: an I label only follows a B or I label of the same type.
// scores[t][y] is the score of labels[y] at position t. If no well formed
// sequence exists the per-position arg-max is returned.
func Viterbi(scores [][]float64, labels []string) []string {
	T := len(scores)
	if T == 0 {
		return nil
	}
	L := len(labels)
	negInf := math.Inf(-1)

	// delta[t][y] = best score ending at time t with label y
	delta := make([][]float64, T)
	// psi[t][y] = best previous label for backtracking
	psi := make([][]int, T)

	delta[0] = make([]float64, L)
	psi[0] = make([]int, L)
	for y := range L {
		delta[0][y] = negInf
		if allowed("", labels[y]) {
			delta[0][y] = scores[0][y]
		}
	}

	for t := 1; t < T; t++ {
		delta[t] = make([]float64, L)
		psi[t] = make([]int, L)
		for y := range L {
			bestScore := negInf
			bestPrev := 0
			for yp := range L {
				if !allowed(labels[yp], labels[y]) {
					continue
				}
				if delta[t-1][yp] > bestScore {
					bestScore = delta[t-1][yp]
					bestPrev = yp
				}
			}
			delta[t][y] = bestScore + scores[t][y]
			psi[t][y] = bestPrev
		}
	}

	bestScore := negInf
	bestLabel := -1
	for y := range L {
		if delta[T-1][y] > bestScore {
			bestScore = delta[T-1][y]
			bestLabel = y
		}
	}
	if bestLabel < 0 {
		return argmaxPath(scores, labels)
	}

	path := make([]int, T)
	path[T-1] = bestLabel
	for t := T - 2; t >= 0; t-- {
		path[t] = psi[t+1][path[t+1]]
	}

	out := make([]string, T)
	for t, y := range path {
		out[t] = labels[y]
	}
	return out
}

func argmaxPath(scores [][]float64, labels []string) []string {
	out := make([]string, len(scores))
	for t, row := range scores {
		best := 0
		for y := range row {
			if row[y] > row[best] {
				best = y
			}
		}
		out[t] = labels[best]
	}
	return out
}
