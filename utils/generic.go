package utils

// Number represents a numeric type.
type Number interface {
	int | int16 | int32 | int64 | float32 | float64
}

// Min is a generic function that returns the minimum value among the provided numbers.
//
// Args:
//   - a: The first number to compare.
//   - b: The remaining numbers to compare.
//
// Returns:
//   - T: The minimum value among the provided numbers.
func Min[T Number](a T, b ...T) (c T) {
	c = a
	for _, n := range b {
		if n < c {
			c = n
		}
	}

	return
}

// Max is a generic function that returns the maximum value among the provided numbers.
//
// Args:
//   - a: The first number to compare.
//   - b: The remaining numbers to compare.
//
// Returns:
//   - T: The maximum value among the provided numbers.
func Max[T Number](a T, b ...T) (c T) {
	c = a
	for _, n := range b {
		if n > c {
			c = n
		}
	}

	return
}

// Clamp bounds the provided value into the [lo, hi] interval.
//
// Args:
//   - val: The value to bound.
//   - lo: The lower bound of the interval.
//   - hi: The upper bound of the interval.
//
// Returns:
//   - T: The bounded value.
func Clamp[T Number](val, lo, hi T) T {
	return Min(Max(val, lo), hi)
}

// Contains is a generic function that checks whether the specified item is present in the given array.
//
// Args:
//   - arr: The array to search in.
//   - item: The item to search for.
//
// Returns:
//   - bool: True if the item is found in the array, otherwise false.
func Contains[T comparable](arr []T, item T) bool {
	for _, i := range arr {
		if i == item {
			return true
		}
	}

	return false
}

// Remove is a generic function that removes the first occurrence of the specified item from the given array.
//
// Args:
//   - arr: The array to remove the item from.
//   - item: The item to remove.
//
// Returns:
//   - []T: The modified array without the removed item.
func Remove[T comparable](arr []T, item T) []T {
	for i, v := range arr {
		if v == item {
			return append(arr[:i], arr[i+1:]...)
		}
	}

	return arr
}
