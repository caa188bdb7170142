package debugui_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/plus3/earthshot/config"
	"github.com/plus3/earthshot/debugui"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *game.Session {
	t.Helper()
	cfg := config.Default()
	cfg.Spawn.Probability = 0
	s, err := game.NewSession(cfg)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(s.Close)
	return s
}

func TestEntityBrowser(t *testing.T) {
	enemy := entity.NewEnemy(3, nil, 30, 0, 0, 0)
	mine := entity.NewMine(1, nil, "Fe", 2)
	cloud := entity.NewCloud(2, nil, "O", 1, 3, "")

	eb := debugui.NewEntityBrowser(10)
	eb.Refresh([]entity.Entity{enemy, mine, cloud})

	ids := func() []entity.ID {
		var out []entity.ID
		for _, info := range eb.Filtered() {
			out = append(out, info.ID)
		}
		return out
	}
	assert.Equal(t, []entity.ID{1, 2, 3}, ids())

	t.Run("sort", func(t *testing.T) {
		eb.SortBy(0, false)
		assert.Equal(t, []entity.ID{3, 2, 1}, ids())
		eb.SortBy(1, true)
		assert.Equal(t, []entity.ID{2, 3, 1}, ids(), "cloud, enemy, mine")
		eb.SortBy(0, true)
	})

	t.Run("filter", func(t *testing.T) {
		eb.SetFilter("mine")
		assert.Equal(t, []entity.ID{1}, ids())
		eb.SetFilter("loading")
		assert.Len(t, ids(), 3)
		eb.SetFilter("")
		assert.Len(t, ids(), 3)
	})

	t.Run("refresh", func(t *testing.T) {
		eb.Refresh([]entity.Entity{mine})
		assert.Equal(t, []entity.ID{1}, ids())
		assert.Equal(t, "Fe", mine.Element)
	})
}

func TestPerformanceStats(t *testing.T) {
	ps := debugui.NewPerformanceStats(4)
	assert.Zero(t, ps.Average())

	ps.Record(0.010)
	ps.Record(0.020)
	assert.InDelta(t, 15, ps.Average(), 1e-4)

	for range 4 {
		ps.Record(0.005)
	}
	assert.InDelta(t, 5, ps.Average(), 1e-4, "old frames roll off")
}

func TestFieldCache(t *testing.T) {
	fc := debugui.NewFieldCache()
	fields := fc.Fields(reflect.TypeOf(entity.Enemy{}))

	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Body", "HealthBar", "Speed", "ContactDamage", "Score"}, names)
	assert.True(t, fields[0].IsPointer)
	assert.True(t, fields[0].Embedded)
	assert.Equal(t, reflect.TypeOf(entity.Body{}), fields[0].Type)

	assert.Empty(t, fc.Fields(reflect.TypeOf(0)))
	assert.Equal(t, fields, fc.Fields(reflect.TypeOf(entity.Enemy{})))
}

func TestSpawnWindow(t *testing.T) {
	s := newSession(t)
	sw := debugui.NewSpawnWindow(s.Spawner(), s.Spawn)

	table := s.Spawner().Table()
	require.NotEmpty(t, table)
	sw.SetSelected(1)
	sw.SetLane(0.25)

	e, err := sw.Spawn()
	require.NoError(t, err)
	assert.Equal(t, table[1].Kind, e.Kind())

	require.NoError(t, s.Update(0.05))
	assert.True(t, s.Registry().Has(e.ID()))
	assert.InDelta(t, s.Config().World.Radius+s.Config().Spawn.Altitude, e.Position().Len(), 1e-6)

	sw.SetSelected(len(table))
	_, err = sw.Spawn()
	assert.Error(t, err)
}

func TestSpawnWindowDegenerateLane(t *testing.T) {
	s := newSession(t)
	sw := debugui.NewSpawnWindow(s.Spawner(), s.Spawn)
	sw.SetLane(math.Inf(1))

	_, err := sw.Spawn()
	assert.Error(t, err)
	assert.Zero(t, s.Spawner().Spawned())
}
