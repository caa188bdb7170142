// Package entity defines the game objects that live on the sphere: their
// shared body, the capability set the engine relies on and the collision
// response of each variant.
package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/geom"
)

type ID uint64

type Kind string

const (
	KindEnemy      Kind = "enemy"
	KindMine       Kind = "mine"
	KindCloud      Kind = "cloud"
	KindLab        Kind = "lab"
	KindProjectile Kind = "projectile"
	KindAxe        Kind = "axe"
	KindPlayer     Kind = "player"
)

// Phase is where an entity is in its life. Only Ready entities collide.
type Phase uint8

const (
	Loading Phase = iota
	Ready
	Disposed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Handle is the renderable an entity is drawn with. Positions and
// translations are in world space.
type Handle interface {
	WorldPosition() mgl64.Vec3
	WorldBounds() (geom.AABB, bool)
	Translate(delta mgl64.Vec3)
	Dispose()
}

// Clickable is implemented by handles that can receive pointer clicks.
type Clickable interface {
	OnClick(fn func())
}

// Asset produces a handle, possibly over several frames. Poll reports ok
// once the handle is available.
type Asset interface {
	Poll() (h Handle, ok bool, err error)
}

// Contact describes what hit an entity.
type Contact struct {
	Source     ID
	SourceKind Kind
	Compound   string
	Damage     float64
	Time       float64
}

// Entity is the capability set every game object exposes.
type Entity interface {
	ID() ID
	Kind() Kind
	Phase() Phase
	Attach(h Handle)
	Position() mgl64.Vec3
	Translate(delta mgl64.Vec3)
	Bounds() (geom.AABB, bool)
	Collide(c Contact)
	ShouldDelete() bool
	MarkForDeletion()
	Dispose()
}

// World receives the side effects of collisions.
type World interface {
	Now() float64
	Collect(symbol string, amount int)
	AddScore(n int)
	PowerUp(kind string)
	Dispatch(e event.Event)
}

// Body is the state shared by every variant. It delegates to its Handle only
// for the operations listed here.
type Body struct {
	Handle Handle

	id           ID
	kind         Kind
	phase        Phase
	shouldDelete bool
	hits         int
}

func NewBody(id ID, kind Kind) *Body {
	return &Body{id: id, kind: kind}
}

func (b *Body) ID() ID       { return b.id }
func (b *Body) Kind() Kind   { return b.kind }
func (b *Body) Phase() Phase { return b.phase }

// Hits counts Collide calls the variant accepted.
func (b *Body) Hits() int { return b.hits }

// Attach makes the body Ready with h. A body disposed while loading releases
// h immediately instead.
func (b *Body) Attach(h Handle) {
	if b.phase == Disposed {
		h.Dispose()
		return
	}
	b.Handle = h
	b.phase = Ready
}

func (b *Body) Position() mgl64.Vec3 {
	if b.Handle == nil {
		return mgl64.Vec3{}
	}
	return b.Handle.WorldPosition()
}

func (b *Body) Translate(delta mgl64.Vec3) {
	if b.Handle != nil {
		b.Handle.Translate(delta)
	}
}

// Bounds is the current world-space box; ok is false unless Ready.
func (b *Body) Bounds() (geom.AABB, bool) {
	if b.phase != Ready {
		return geom.AABB{}, false
	}
	return b.Handle.WorldBounds()
}

func (b *Body) ShouldDelete() bool { return b.shouldDelete }
func (b *Body) MarkForDeletion()   { b.shouldDelete = true }

// Dispose releases the handle once; later calls do nothing.
func (b *Body) Dispose() {
	if b.phase == Disposed {
		return
	}
	if b.Handle != nil {
		b.Handle.Dispose()
	}
	b.phase = Disposed
	b.shouldDelete = true
}

// Collide is a no-op; variants with a response override it.
func (b *Body) Collide(Contact) {}
