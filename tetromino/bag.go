package tetromino

import (
	"lukechampine.com/frand"
)

const (
	// Each refill holds this many copies of every shape.
	CopiesPerRefill = 4
	// The bag refills once fewer than this many shapes are queued.
	RefillThreshold = 3
)

// Bag is a queue of upcoming shapes. It gives fair randomness without long
// droughts or long runs of a single shape.
type Bag struct {
	rng   *frand.RNG
	queue []Shape
}

// NewBag returns a bag drawing from rng. A nil rng uses a fresh
// cryptographically seeded one.
func NewBag(rng *frand.RNG) *Bag {
	if rng == nil {
		rng = frand.New()
	}
	b := &Bag{rng: rng}
	b.refill()
	return b
}

// NewSeededBag returns a bag whose sequence is fully determined by seed.
func NewSeededBag(seed [32]byte) *Bag {
	return NewBag(frand.NewCustom(seed[:], 1024, 12))
}

func (b *Bag) refill() {
	batch := make([]Shape, 0, NumShapes*CopiesPerRefill)
	for i := 0; i < CopiesPerRefill; i++ {
		for s := 0; s < NumShapes; s++ {
			batch = append(batch, Shape(s))
		}
	}
	b.rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	b.queue = append(b.queue, batch...)
}

// Next removes and returns the next shape.
func (b *Bag) Next() Shape {
	if b.queued() < RefillThreshold {
		b.refill()
	}
	s := b.queue[0]
	b.queue = b.queue[1:]
	return s
}

// Peek returns the next n shapes without removing them.
func (b *Bag) Peek(n int) []Shape {
	for b.queued() < n {
		b.refill()
	}
	out := make([]Shape, n)
	copy(out, b.queue)
	return out
}

func (b *Bag) queued() int {
	return len(b.queue)
}
