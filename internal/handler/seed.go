package handler

import "math/rand/v2"

// SeedSource supplies the seed for jobs that carry none. It is injected so
// tests can pin a deterministic value.
type SeedSource func() uint32

// RandomSeed draws uniformly from the full unsigned 32-bit range.
func RandomSeed() uint32 {
	return rand.Uint32()
}
