package engine

import "fmt"

// Migrate copies every key of src into dst, overwriting existing values.
// It is used to push an embedded store to a shared daemon and back.
func Migrate(src Store, dst Store) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}

	copied := 0
	for _, k := range keys {
		v, err := src.Get(k)
		if err != nil {
			return copied, fmt.Errorf("failed to read key %s: %w", k, err)
		}
		if err := dst.Set(k, v); err != nil {
			return copied, fmt.Errorf("failed to set key %s in destination: %w", k, err)
		}
		copied++
	}
	return copied, nil
}
