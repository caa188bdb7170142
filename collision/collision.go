// Package collision finds which candidates overlap a subject using
// axis-aligned bounding boxes computed fresh on every call.
package collision

import (
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/log"
)

// Bounded reports a world-space box. ok is false while the object has no
// usable geometry, e.g. before its asset has loaded.
type Bounded interface {
	Bounds() (box geom.AABB, ok bool)
}

// Candidate is anything Check can return: comparable so duplicates can be
// detected by identity.
type Candidate interface {
	comparable
	Bounded
}

// Check returns the candidates whose boxes intersect the subject's box, in
// candidate order and without duplicates. Candidates without bounds and the
// subject itself are skipped. A subject without bounds hits nothing.
func Check[T Candidate](subject Bounded, candidates []T) []T {
	box, ok := subject.Bounds()
	if !ok {
		return nil
	}
	hits, _ := overlap(box, subject, candidates)
	return hits
}

// CheckSwept is Check against the union of the subject's box at the previous
// frame and now, so fast subjects do not pass through thin targets between
// frames.
func CheckSwept[T Candidate](prev geom.AABB, subject Bounded, candidates []T) []T {
	box, ok := subject.Bounds()
	if !ok {
		return nil
	}
	hits, _ := overlap(prev.Union(box), subject, candidates)
	return hits
}

func overlap[T Candidate](box geom.AABB, subject Bounded, candidates []T) (hits []T, missing int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	seen := make(map[T]struct{}, len(candidates))
	for _, c := range candidates {
		if any(c) == any(subject) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		cb, ok := c.Bounds()
		if !ok || !cb.Valid() {
			missing++
			continue
		}
		if box.Intersects(cb) {
			hits = append(hits, c)
		}
	}
	return hits, missing
}

// Stats counts resolver work since creation.
type Stats struct {
	Checks  int64
	Tested  int64
	Hits    int64
	Missing int64
}

// Resolver runs checks for one candidate type and keeps counters for the
// debug overlay. Candidates without geometry are logged at debug level.
type Resolver[T Candidate] struct {
	logger *log.Logger
	stats  Stats
}

func NewResolver[T Candidate](logger *log.Logger) *Resolver[T] {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Resolver[T]{logger: logger.Named("collision")}
}

func (r *Resolver[T]) Check(subject Bounded, candidates []T) []T {
	box, ok := subject.Bounds()
	if !ok {
		r.stats.Checks++
		r.stats.Missing++
		r.logger.Debug("subject has no bounds")
		return nil
	}
	return r.resolve(box, subject, candidates)
}

func (r *Resolver[T]) CheckSwept(prev geom.AABB, subject Bounded, candidates []T) []T {
	box, ok := subject.Bounds()
	if !ok {
		r.stats.Checks++
		r.stats.Missing++
		r.logger.Debug("subject has no bounds")
		return nil
	}
	return r.resolve(prev.Union(box), subject, candidates)
}

func (r *Resolver[T]) resolve(box geom.AABB, subject Bounded, candidates []T) []T {
	hits, missing := overlap(box, subject, candidates)

	r.stats.Checks++
	r.stats.Tested += int64(len(candidates))
	r.stats.Hits += int64(len(hits))
	r.stats.Missing += int64(missing)
	if missing > 0 {
		r.logger.Debug("skipped candidates without bounds", log.Int("count", missing))
	}
	return hits
}

func (r *Resolver[T]) Stats() Stats { return r.stats }
