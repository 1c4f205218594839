package analysis

// Resolve picks the most frequent schedule value for every genre. Ties go to
// the lexicographically smallest schedule string.
func Resolve(table FrequencyTable) map[string]string {
	result := make(map[string]string, len(table))
	for genre, counts := range table {
		if best, _, ok := Mode(counts); ok {
			result[genre] = best
		}
	}
	return result
}

// Mode returns the winning schedule value and its count. ok is false for an
// empty mapping.
func Mode(counts map[string]int) (schedule string, count int, ok bool) {
	for s, n := range counts {
		if !ok || n > count || (n == count && s < schedule) {
			schedule, count, ok = s, n, true
		}
	}
	return schedule, count, ok
}
