package mathx

import "math"

// FloorToInt floors v and converts it to int. Non-finite input maps to 0.
func FloorToInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 mixes a seed and a full-width coordinate pair. Coordinates are not
// truncated, so distinct cells far from the origin never alias.
func Hash2(seed int64, x, z int) uint64 {
	ux := mix64(uint64(int64(x)))
	uz := mix64(uint64(int64(z)) ^ 0xc2b2ae3d27d4eb4f)
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// HashString is 64-bit FNV-1a. It folds a discriminator string into a seed.
func HashString(s string) uint64 {
	h := uint64(0xcbf29ce484222325)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 0x100000001b3
	}
	return h
}

// Unit maps a hash to [0, 1) using its top 53 bits.
func Unit(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}
