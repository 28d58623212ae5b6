package util

// MaxInt returns the larger one of given integers
func MaxInt(x int, y int) int {
	if x > y {
		return x
	}
	return y
}
