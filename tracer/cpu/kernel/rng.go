package kernel

import "math/rand/v2"

// A reseedable random source. Each (frame seed, pixel, sample) triplet maps to
// an independent PCG stream so that samples can be traced in any order and
// on any worker while still producing the same frame.
type Rng struct {
	pcg rand.PCG
}

// Create a random source seeded with (seed, stream).
func NewRng(seed, stream uint64) *Rng {
	r := &Rng{}
	r.pcg.Seed(seed, mix64(stream))
	return r
}

// Reseed the generator for a particular pixel sample.
func (r *Rng) Seed(frameSeed uint64, pixel, sample uint32) {
	r.pcg.Seed(mix64(frameSeed), mix64(uint64(pixel)<<32|uint64(sample)))
}

// Get a uniformly distributed value in [0, 1).
func (r *Rng) Float32() float32 {
	return float32(r.pcg.Uint64()>>40) * (1.0 / (1 << 24))
}

// splitmix64 finalizer; spreads neighboring pixel/sample ids over the state space.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
