// Package game assembles one play session: every engine piece is built once
// here and wired through a single Session value instead of globals.
package game

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/plus3/earthshot/ballistics"
	"github.com/plus3/earthshot/clock"
	"github.com/plus3/earthshot/collision"
	"github.com/plus3/earthshot/config"
	"github.com/plus3/earthshot/effect"
	"github.com/plus3/earthshot/element"
	"github.com/plus3/earthshot/entity"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/geom"
	"github.com/plus3/earthshot/input"
	"github.com/plus3/earthshot/log"
	"github.com/plus3/earthshot/movement"
	"github.com/plus3/earthshot/scene"
	"github.com/plus3/earthshot/spawn"
	"github.com/plus3/earthshot/store"
	"github.com/plus3/earthshot/updater"
	"github.com/plus3/earthshot/weapon"
)

type options struct {
	logger     *log.Logger
	input      input.Provider
	loadFrames int
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInput sets the device the session polls every tick.
func WithInput(p input.Provider) Option {
	return func(o *options) { o.input = p }
}

// WithLoadFrames makes every entity asset take n ticks to load.
func WithLoadFrames(n int) Option {
	return func(o *options) { o.loadFrames = n }
}

type Session struct {
	ID uuid.UUID

	cfg    config.Config
	logger *log.Logger

	clock    *clock.Clock
	queue    *updater.Queue
	events   *event.Dispatcher
	registry *collision.Registry[entity.ID, entity.Entity]
	resolver *collision.Resolver[entity.Entity]
	store    *store.Memory
	effects  *effect.Engine

	scene   *scene.Scene
	factory *scene.Factory
	player  *entity.Body

	spawner    *spawn.Spawner
	input      *input.Latch
	movement   *movement.Controller
	ballistics *ballistics.Ballistics
	armory     *weapon.Armory
	axe        *weapon.Axe

	sphereAngle float64
	started     bool
}

var _ entity.World = (*Session)(nil)

// NewSession validates cfg and builds a session that has not started yet.
func NewSession(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := effect.ParseMode(cfg.Effects.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	o := options{logger: log.NewNop(), input: input.None{}}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		ID:       uuid.New(),
		cfg:      cfg,
		clock:    clock.New(cfg.MaxDelta),
		events:   event.NewDispatcher(),
		registry: collision.NewRegistry[entity.ID, entity.Entity](),
		store:    store.NewMemory(float64(cfg.Player.Health)),
		scene:    scene.New(cfg.World.Radius, cfg.World.CameraHeight, cfg.Player.HalfSize),
	}
	s.logger = o.logger.With(log.String("session", s.ID.String()))
	s.queue = updater.NewQueue(s.logger)
	s.resolver = collision.NewResolver[entity.Entity](s.logger)
	s.effects = effect.NewEngine(s.queue, mode, s.logger)
	s.factory = scene.NewFactory(s.scene, s, o.loadFrames)

	s.player = entity.NewBody(0, entity.KindPlayer)
	s.player.Attach(s.scene.Player)

	for sym, n := range cfg.Weapon.StartingElements {
		s.store.Counters().Add(sym, n, 0)
	}

	s.spawner = spawn.New(spawn.Config{
		Interval:       cfg.Spawn.Interval,
		Probability:    cfg.Spawn.Probability,
		Lanes:          cfg.Spawn.Lanes,
		Horizon:        cfg.Spawn.Horizon,
		Altitude:       cfg.Spawn.Altitude,
		Radius:         cfg.World.Radius,
		RotationPeriod: cfg.World.RotationPeriod,
		Table:          spawnTable(cfg),
	}, spawn.Deps{
		Factory:  s.factory,
		Registry: s.registry,
		Sphere:   s.scene.Sphere,
		Rand:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		Dispatch: s.events.Dispatch,
		Logger:   s.logger,
	})

	s.input = input.NewLatch(o.input)
	s.movement = movement.New(movement.Config{
		Acceleration: cfg.Movement.Acceleration,
		Drag:         cfg.Movement.Drag,
		MaxSpeed:     cfg.Movement.MaxSpeed,
		TurnSpeed:    cfg.Movement.TurnSpeed,
		LookSpeed:    cfg.Movement.LookSpeed,
		MaxTilt:      cfg.Movement.MaxTilt,
	}, s.input, s.scene.Pivot, s.scene.Camera, s.logger)

	s.ballistics = ballistics.New(ballistics.Config{
		Speed:        cfg.Projectile.Speed,
		Acceleration: cfg.Projectile.Acceleration,
		Gravity:      cfg.Projectile.Gravity,
		MaxFlight:    cfg.Projectile.MaxFlight,
		Radius:       cfg.World.Radius,
		StunDuration: cfg.Effects.StunDuration,
		BurnPulses:   cfg.Effects.BurnPulses,
		BurnDamage:   float64(cfg.Effects.BurnDamage),
	}, ballistics.Deps{
		Resolver: s.resolver,
		Targets:  s.registry.Candidates,
		Effects:  s.effects,
		PowerUps: s.store,
		Logger:   s.logger,
	})

	s.armory = weapon.NewArmory(weapon.Config{
		Cooldown:        cfg.Weapon.Cooldown,
		RapidFireFactor: cfg.Weapon.RapidFireFactor,
		HalfSize:        cfg.Projectile.HalfSize,
		Starting:        cfg.Weapon.Starting,
		Compounds:       compounds(cfg),
	}, weapon.Deps{
		Factory:    s.factory,
		Counters:   s.store.Counters(),
		PowerUps:   s.store,
		Ballistics: s.ballistics,
		Queue:      s.queue,
		Clock:      s.clock,
		Muzzle:     s.movement.Muzzle,
		Dispatch:   s.events.Dispatch,
		Logger:     s.logger,
	})

	s.axe = weapon.NewAxe(weapon.AxeConfig{
		SwingTime: cfg.Axe.SwingTime,
		Damage:    float64(cfg.Axe.Damage),
		Reach:     cfg.Axe.Reach,
		HalfSize:  cfg.Axe.HalfSize,
	}, weapon.AxeDeps{
		Factory:  s.factory,
		Queue:    s.queue,
		Resolver: s.resolver,
		Targets:  s.registry.Candidates,
		Holder:   s.movement.Muzzle,
		Logger:   s.logger,
	})

	s.input.Handle(s.act)
	s.events.Subscribe(event.Spawned, s.bindLab)
	return s, nil
}

func spawnTable(cfg config.Config) []spawn.Entry {
	table := make([]spawn.Entry, 0, len(cfg.Spawn.Table))
	for _, e := range cfg.Spawn.Table {
		p := entity.SpawnParams{
			HalfSize: e.HalfSize,
			Element:  e.Element,
			Amount:   e.Amount,
			Charges:  e.Charges,
			Compound: e.Compound,
			PowerUp:  e.PowerUp,
		}
		if entity.Kind(e.Kind) == entity.KindEnemy {
			p.Health = float64(cfg.Enemy.Health)
			p.Speed = cfg.Enemy.Speed
			p.Damage = float64(cfg.Enemy.ContactDamage)
			p.Score = cfg.Enemy.Score
			if p.HalfSize == 0 {
				p.HalfSize = cfg.Enemy.HalfSize
			}
		}
		if p.HalfSize == 0 {
			p.HalfSize = 1
		}
		table = append(table, spawn.Entry{Kind: entity.Kind(e.Kind), Weight: e.Weight, Params: p})
	}
	return table
}

func compounds(cfg config.Config) []weapon.Compound {
	out := make([]weapon.Compound, 0, len(cfg.Weapon.Compounds))
	for _, c := range cfg.Weapon.Compounds {
		out = append(out, weapon.Compound{
			Formula: c.Formula,
			Name:    c.Name,
			Cost:    element.Cost(c.Cost),
			Unlock:  element.Cost(c.Unlock),
			Damage:  float64(c.Damage),
			Effect:  c.Effect,
		})
	}
	return out
}

// Start schedules the long-running tasks. Input is read first so every
// other task sees this tick's state.
func (s *Session) Start() {
	if s.started {
		return
	}
	s.started = true

	s.queue.Schedule(s.input)
	s.queue.Schedule(s.movement)
	s.queue.Schedule(updater.NewFunc("sphere", s.rotateSphere))
	s.queue.Schedule(updater.NewFunc("enemies", s.stepEnemies))
	s.queue.Schedule(s.spawner)

	s.logger.Info("session started",
		log.Uint64("seed", s.cfg.Seed),
		log.Float64("radius", s.cfg.World.Radius),
		log.String("effects", string(s.effects.Mode())),
	)
}

// Update advances the clock by dt, clamped to MaxDelta, and ticks the queue
// once. Task failures are published as TaskFailed events and returned.
func (s *Session) Update(dt float64) error {
	step := s.clock.Advance(dt)
	err := s.queue.Tick(step)
	for _, se := range updater.StepErrors(err) {
		s.events.Dispatch(event.Event{
			Type: event.TaskFailed,
			Time: s.clock.Elapsed(),
			Name: se.Task,
		})
	}
	return err
}

// Spawn places an entity outside the spawn cadence, e.g. from a debug tool.
func (s *Session) Spawn(kind entity.Kind, p entity.SpawnParams) (entity.Entity, error) {
	return s.spawner.Spawn(s.queue, s.clock.Elapsed(), kind, p)
}

// Close drops every live task, releasing what they hold.
func (s *Session) Close() {
	s.queue.Clear()
	s.registry.Clear()
	_ = s.logger.Sync()
}

// Over reports whether the player has run out of health.
func (s *Session) Over() bool { return s.store.Health() <= 0 }

func (s *Session) rotateSphere(frame *updater.Frame) (updater.Lifecycle, error) {
	angle := 2 * math.Pi / s.cfg.World.RotationPeriod * frame.DeltaTime
	s.scene.Sphere.RotateAround(geom.Right, angle)
	s.sphereAngle += angle
	return updater.Lifecycle{}, nil
}

// stepEnemies walks every ready enemy toward the player and resolves
// contact. Touching the player costs health and removes the enemy.
func (s *Session) stepEnemies(frame *updater.Frame) (updater.Lifecycle, error) {
	target := s.scene.Player.WorldPosition()

	var enemies []entity.Entity
	for _, e := range s.registry.Candidates() {
		enemy, ok := e.(*entity.Enemy)
		if !ok || enemy.Phase() != entity.Ready || enemy.ShouldDelete() {
			continue
		}
		if !enemy.Stunned() {
			enemy.Advance(target, enemy.Speed*s.cfg.World.Radius*frame.DeltaTime)
		}
		enemies = append(enemies, enemy)
	}

	for _, e := range s.resolver.Check(s.player, enemies) {
		enemy := e.(*entity.Enemy)
		damage := enemy.ContactDamage
		if s.store.Invincible() {
			damage = 0
		}
		s.store.Damage(damage)
		enemy.MarkForDeletion()
		s.events.Dispatch(event.Event{
			Type:   event.PlayerDamaged,
			Time:   frame.Elapsed,
			Entity: uint64(enemy.ID()),
			Kind:   string(enemy.Kind()),
			Amount: int(damage),
		})
		if s.Over() {
			s.logger.Info("player down", log.Int("score", s.store.Score()))
		}
	}
	return updater.Lifecycle{}, nil
}

// act turns this tick's input edges into weapon actions.
func (s *Session) act(st input.State, frame *updater.Frame) {
	if st.Cycle {
		s.armory.Cycle()
	}
	if st.Craft != "" {
		if err := s.armory.Craft(st.Craft); err != nil {
			s.logger.Debug("craft", log.Err(err))
		}
	}
	if st.Fire {
		if _, err := s.armory.Fire(); err != nil {
			s.logger.Debug("fire", log.Err(err))
		}
	}
	if st.Swing {
		if _, err := s.axe.Swing(); err != nil {
			s.logger.Debug("swing", log.Err(err))
		}
	}
}

func (s *Session) bindLab(ev event.Event) {
	e, ok := s.registry.Get(entity.ID(ev.Entity))
	if !ok {
		return
	}
	if lab, ok := e.(*entity.Lab); ok {
		s.armory.BindLab(lab)
	}
}

// Now, Collect, AddScore, PowerUp and Dispatch make the session the World
// every entity reports to.

func (s *Session) Now() float64 { return s.clock.Elapsed() }

func (s *Session) Collect(symbol string, amount int) {
	s.store.Counters().Add(symbol, amount, s.clock.Elapsed())
	s.events.Dispatch(event.Event{
		Type:   event.Collected,
		Time:   s.clock.Elapsed(),
		Name:   symbol,
		Amount: amount,
	})
}

func (s *Session) AddScore(n int) { s.store.AddScore(n) }

func (s *Session) PowerUp(kind string) {
	s.effects.Apply(kind, s.store, s.cfg.Effects.PowerUpDuration)
}

func (s *Session) Dispatch(e event.Event) { s.events.Dispatch(e) }

func (s *Session) Config() config.Config                                   { return s.cfg }
func (s *Session) Clock() *clock.Clock                                     { return s.clock }
func (s *Session) Queue() *updater.Queue                                   { return s.queue }
func (s *Session) Events() *event.Dispatcher                               { return s.events }
func (s *Session) Registry() *collision.Registry[entity.ID, entity.Entity] { return s.registry }
func (s *Session) Resolver() *collision.Resolver[entity.Entity]            { return s.resolver }
func (s *Session) Store() *store.Memory                                    { return s.store }
func (s *Session) Effects() *effect.Engine                                 { return s.effects }
func (s *Session) Scene() *scene.Scene                                     { return s.scene }
func (s *Session) Spawner() *spawn.Spawner                                 { return s.spawner }
func (s *Session) Movement() *movement.Controller                          { return s.movement }
func (s *Session) Armory() *weapon.Armory                                  { return s.armory }
func (s *Session) Axe() *weapon.Axe                                        { return s.axe }
func (s *Session) Logger() *log.Logger                                     { return s.logger }
