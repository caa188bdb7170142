package game

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/element"
	"github.com/plus3/earthshot/entity"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the observable state of a session at the end of a tick. Two
// sessions fed the same config, seed and input produce equal snapshots.
type Snapshot struct {
	Tick    uint64  `msgpack:"tick"`
	Elapsed float64 `msgpack:"elapsed"`

	Health   float64                    `msgpack:"health"`
	Score    int                        `msgpack:"score"`
	Elements map[string]element.Counter `msgpack:"elements"`
	PowerUps map[string]float64         `msgpack:"power_ups"`
	Selected string                     `msgpack:"selected"`
	Unlocked []string                   `msgpack:"unlocked"`

	SphereAngle float64    `msgpack:"sphere_angle"`
	Pivot       [4]float64 `msgpack:"pivot"`
	Drift       [2]float64 `msgpack:"drift"`
	Pitch       float64    `msgpack:"pitch"`

	Entities []EntityState `msgpack:"entities"`
	Tasks    []string      `msgpack:"tasks"`
}

type EntityState struct {
	ID       uint64     `msgpack:"id"`
	Kind     string     `msgpack:"kind"`
	Phase    string     `msgpack:"phase"`
	Position [3]float64 `msgpack:"position"`
	Health   float64    `msgpack:"health,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:        s.queue.Ticks(),
		Elapsed:     s.clock.Elapsed(),
		Health:      s.store.Health(),
		Score:       s.store.Score(),
		Elements:    s.store.Counters().Snapshot(),
		PowerUps:    s.store.PowerUps(),
		Unlocked:    s.armory.Unlocks(),
		SphereAngle: s.sphereAngle,
		Pivot:       quat(s.scene.Pivot.LocalRotation()),
		Drift:       [2]float64(s.movement.Drift),
		Pitch:       s.movement.Pitch,
		Tasks:       s.queue.Names(),
	}
	if c, ok := s.armory.Selected(); ok {
		snap.Selected = c.Formula
	}

	for _, e := range s.registry.Candidates() {
		st := EntityState{
			ID:       uint64(e.ID()),
			Kind:     string(e.Kind()),
			Phase:    e.Phase().String(),
			Position: [3]float64(e.Position()),
		}
		if enemy, ok := e.(*entity.Enemy); ok {
			st.Health = enemy.HealthBar.Current
		}
		snap.Entities = append(snap.Entities, st)
	}
	return snap
}

func quat(q mgl64.Quat) [4]float64 {
	return [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
}

// MarshalSnapshot encodes the current snapshot as msgpack with map keys
// sorted, so equal snapshots encode to equal bytes.
func (s *Session) MarshalSnapshot() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(s.Snapshot()); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes bytes produced by MarshalSnapshot.
func UnmarshalSnapshot(b []byte) (Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Digest is the xxhash of the encoded snapshot.
func (s *Session) Digest() (uint64, error) {
	b, err := s.MarshalSnapshot()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}
