package main

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/plus3/earthshot/config"
	"github.com/plus3/earthshot/game"
	"github.com/plus3/earthshot/input"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/updater"
)

// randomInput plays a seeded player: mostly walking and turning, firing now
// and then.
type randomInput struct {
	rng *rand.Rand
}

func newRandomInput(seed uint64) *randomInput {
	return &randomInput{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

func (r *randomInput) Poll() input.State {
	return input.State{
		Forward: r.rng.Float64() < 0.7,
		Left:    r.rng.Float64() < 0.1,
		Right:   r.rng.Float64() < 0.1,
		LookX:   r.rng.Float64()*2 - 1,
		LookY:   (r.rng.Float64()*2 - 1) * 0.2,
		Fire:    r.rng.Float64() < 0.1,
		Swing:   r.rng.Float64() < 0.03,
		Cycle:   r.rng.Float64() < 0.01,
		Craft:   [...]string{"", "FeS", "SO2"}[r.rng.IntN(3)],
	}
}

// Result is what one session run reports.
type Result struct {
	Seed     uint64
	Ticks    int
	Digest   uint64
	Health   float64
	Score    int
	Fired    int
	Spawned  int
	Failures int64
	Unlocked []string

	UpdateTime Stats
}

// run plays one session for ticks fixed steps of dt, or until ctx is done.
func run(ctx context.Context, cfg config.Config, seed uint64, ticks int, dt float64, logger *log.Logger) (Result, error) {
	cfg.Seed = seed
	s, err := game.NewSession(cfg, game.WithLogger(logger), game.WithInput(newRandomInput(seed)))
	if err != nil {
		return Result{}, err
	}
	s.Start()
	defer s.Close()

	res := Result{Seed: seed, UpdateTime: Stats{Samples: make([]time.Duration, 0, ticks)}}
	for i := 0; i < ticks && !s.Over(); i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		start := time.Now()
		err := s.Update(dt)
		res.UpdateTime.Samples = append(res.UpdateTime.Samples, time.Since(start))
		// task failures are logged and counted; they do not stop the run
		if err != nil && len(updater.StepErrors(err)) == 0 {
			return Result{}, err
		}
		res.Ticks++
	}
	res.UpdateTime.Finalize()

	res.Digest, err = s.Digest()
	if err != nil {
		return Result{}, err
	}
	res.Health = s.Store().Health()
	res.Score = s.Store().Score()
	res.Fired = s.Armory().Fired()
	res.Spawned = s.Spawner().Spawned()
	res.Failures = s.Queue().Stats().Failures
	res.Unlocked = s.Armory().Unlocks()
	return res, nil
}
