package consensus

// majorityOf returns the single value with the highest occurrence count.
// A tie for the maximum, including a complete three-way split, means no
// majority: ok is false and the field falls back to its default.
func majorityOf(values []string) (winner string, ok bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	atMax := 0
	for v, n := range counts {
		if n == max {
			atMax++
			winner = v
		}
	}
	if atMax != 1 {
		return "", false
	}
	return winner, true
}
