// Package mapper converts slices between persistence rows, domain entities
// and DTOs.
package mapper

import "fmt"

// MapSlice keeps nil as nil so empty JSON lists and absent results stay distinct.
func MapSlice[T any, R any](items []T, fn func(T) R) []R {
	if items == nil {
		return nil
	}
	out := make([]R, len(items))
	for i := range items {
		out[i] = fn(items[i])
	}
	return out
}

// MapSliceWithError stops at the first row that fails to convert.
func MapSliceWithError[T any, R any](items []T, fn func(T) (R, error)) ([]R, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]R, len(items))
	for i := range items {
		mapped, err := fn(items[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = mapped
	}
	return out, nil
}
