package model

// ResolveRelative implements the cross-service relative-index encoding
// from spec.md §6:
//
//	n > 7000  -> absolute index = current - 7000 + n
//	n <= 0    -> absolute index = current + n
//	otherwise -> n is already absolute
//
// It is a pure function so the config loader (the only caller) and its
// tests can exercise it without any registry or bus machinery.
func ResolveRelative(current, n int) int {
	switch {
	case n > 7000:
		return current - 7000 + n
	case n <= 0:
		return current + n
	default:
		return n
	}
}
