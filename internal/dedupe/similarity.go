package dedupe

import "strings"

// Similarity scores two organization names in [0,1]. Names are normalized
// first; equal normalized forms short-circuit to 1.0 and an empty side
// scores 0.0. The base is the longest-matching-blocks sequence ratio, then
// two boosts apply: containment raises the score to at least 0.8, and a
// token-overlap of 0.8+ (intersection over the smaller token set) raises it
// to at least 0.9. Boosts only ever raise the score, so the result is the
// max of the base ratio and any applicable boost floor.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	sim := sequenceRatio(na, nb)

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		sim = max(sim, 0.8)
	}

	if tokenOverlap(na, nb) >= 0.8 {
		sim = max(sim, 0.9)
	}

	return sim
}

// tokenOverlap is the token-set intersection size divided by the size of
// the smaller set.
func tokenOverlap(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}

	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	return float64(inter) / float64(smaller)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// sequenceRatio computes 2*M/T where M is the total length of the longest
// matching blocks between a and b and T is the combined length. This is the
// character-level sequence-matcher ratio used for fuzzy name comparison.
func sequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	// Positions of each rune in b, for the matching-block search.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(ra, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		queue = append(queue,
			span{s.alo, i, s.blo, j},
			span{i + k, s.ahi, j + k, s.bhi},
		)
	}

	return 2.0 * float64(matched) / float64(total)
}

// longestMatch finds the longest block where a[alo:ahi] and b[blo:bhi]
// agree, returning its start in a, start in b, and length.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}

	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
