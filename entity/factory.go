package entity

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/updater"
)

var ErrUnknownKind = errors.New("unknown entity kind")

// Space selects the coordinate frame of SpawnParams.Position.
type Space uint8

const (
	// SpaceWorld places the entity at a fixed world position.
	SpaceWorld Space = iota
	// SpaceSphere parents the entity to the sphere so it turns with it.
	SpaceSphere
)

// SpawnParams carries everything a factory needs to build any variant.
// Fields that do not apply to the kind are ignored.
type SpawnParams struct {
	Space    Space
	Position mgl64.Vec3
	HalfSize float64

	Element  string
	Amount   int
	Charges  int
	Compound string
	PowerUp  string

	Health float64
	Speed  float64
	Damage float64
	Score  int
}

// Factory creates entities in the Loading phase together with the asset
// that will make them Ready.
type Factory interface {
	New(kind Kind, p SpawnParams) (Entity, Asset, error)
}

// Build constructs the variant for kind without any handle.
func Build(id ID, kind Kind, world World, p SpawnParams) (Entity, error) {
	switch kind {
	case KindEnemy:
		return NewEnemy(id, world, p.Health, p.Speed, p.Damage, p.Score), nil
	case KindMine:
		return NewMine(id, world, p.Element, p.Amount), nil
	case KindCloud:
		return NewCloud(id, world, p.Element, p.Amount, p.Charges, p.PowerUp), nil
	case KindLab:
		return NewLab(id, p.Compound), nil
	case KindProjectile:
		return NewProjectile(id, p.Compound, p.Damage), nil
	case KindAxe:
		return NewAxe(id, p.Damage), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// LoadState is the state of the task that waits for an entity's asset.
type LoadState struct {
	updater.Lifecycle
	Entity Entity
	Asset  Asset
	Polls  int
}

// Load returns a task polling asset once per tick until it yields a handle,
// then attaches it and calls onReady. An entity disposed while loading gets
// its handle released as soon as it arrives. Asset errors fail the task.
func Load(e Entity, asset Asset, onReady func(Entity)) updater.Updater {
	return updater.New("entity.load", LoadState{Entity: e, Asset: asset},
		func(s LoadState, frame *updater.Frame) (LoadState, error) {
			s.Polls++
			h, ok, err := s.Asset.Poll()
			if err != nil {
				return s, fmt.Errorf("load %s %d: %w", s.Entity.Kind(), s.Entity.ID(), err)
			}
			if !ok {
				return s, nil
			}

			s.Finished = true
			wasDisposed := s.Entity.Phase() == Disposed
			s.Entity.Attach(h)
			if !wasDisposed && onReady != nil {
				onReady(s.Entity)
			}
			return s, nil
		})
}
