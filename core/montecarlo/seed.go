package montecarlo

import "hash/fnv"

// DeriveSeed maps (base, program, index) to a replicate seed. The same
// inputs always give the same seed; neighbouring indices or programs give
// unrelated streams.
func DeriveSeed(base uint64, program string, index int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(program))
	x := splitmix64(base ^ h.Sum64())
	return splitmix64(x + uint64(index))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
