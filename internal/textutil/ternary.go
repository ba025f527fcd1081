package textutil

// Ternary returns whenTrue when cond holds, otherwise whenFalse.
func Ternary[T any](cond bool, whenTrue, whenFalse T) T {
	if cond {
		return whenTrue
	}
	return whenFalse
}
