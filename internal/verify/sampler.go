package verify

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/factchecker/veracity/internal/config"
)

// Sampler supplies the placeholder scores (claim confidence, contradiction,
// bias, recency) that no model computes yet. Sample returns a value in [0,1).
type Sampler interface {
	Sample(key string) float64
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(key string) float64

// Sample calls f(key).
func (f SamplerFunc) Sample(key string) float64 {
	return f(key)
}

// HashSampler derives a sample from a hash of the seed and key, so the same
// input always produces the same report.
type HashSampler struct {
	Seed uint64
}

// Sample returns a uniform value in [0,1) determined by key.
func (h HashSampler) Sample(key string) float64 {
	f := fnv.New64a()
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], h.Seed)
	f.Write(seed[:])
	f.Write([]byte(key))
	return float64(mix64(f.Sum64())>>11) / (1 << 53)
}

// mix64 is the splitmix64 finalizer; FNV alone leaves the high bits poorly mixed for short keys.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// RandSampler draws from a seeded PCG stream and ignores the key.
// Reports are not reproducible across calls.
type RandSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSampler creates a RandSampler.
func NewRandSampler(seed uint64) *RandSampler {
	return &RandSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample returns the next value in [0,1).
func (s *RandSampler) Sample(string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewSampler builds the sampler named in the pipeline configuration.
func NewSampler(cfg config.PipelineConfig) Sampler {
	if cfg.Sampler == "random" {
		return NewRandSampler(cfg.Seed)
	}
	return HashSampler{Seed: cfg.Seed}
}

// sampleRange scales a sample into [lo, hi).
func sampleRange(s Sampler, key string, lo, hi float64) float64 {
	return lo + s.Sample(key)*(hi-lo)
}
