package collab

import (
	"math/rand"

	"github.com/google/uuid"
)

// SeededGUIDFactory generates uuid.UUID-shaped ids from a seeded random
// source. The teacher (fenrir) already reaches for google/uuid to mint
// order ids on the wire; here the same library backs the engine's
// GuidFactory collaborator, but fed from a deterministic reader so that
// spec §8's determinism property holds: same seed and call sequence always
// produce the same id sequence.
type SeededGUIDFactory struct {
	rng *rand.Rand
}

// NewSeededGUIDFactory builds a factory whose id sequence is fully
// determined by seed.
func NewSeededGUIDFactory(seed int64) *SeededGUIDFactory {
	return &SeededGUIDFactory{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns the next id in the deterministic sequence.
func (f *SeededGUIDFactory) Generate() string {
	id, err := uuid.NewRandomFromReader(f.rng)
	if err != nil {
		// f.rng never returns an error; a failure here means the reader
		// contract changed underneath us.
		panic("collab: seeded guid generation failed: " + err.Error())
	}
	return id.String()
}
