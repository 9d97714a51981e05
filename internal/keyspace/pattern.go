package keyspace

// GenerateAllCaseCombinations lists every case variant of pattern in
// enumeration order. It materializes the whole space; use NewPatternSpace
// and an Iterator for long patterns.
func GenerateAllCaseCombinations(pattern string) []string {
	space, err := NewPatternSpace(pattern)
	if err != nil {
		return nil
	}
	out := make([]string, 0, space.Size())
	it := space.Iterator(0)
	for {
		candidate, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, candidate)
	}
}
