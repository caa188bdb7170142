package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/earthshot/effect"
	"github.com/plus3/earthshot/event"
	"github.com/plus3/earthshot/geom"
)

// HealthBar mirrors an enemy's health for display.
type HealthBar struct {
	Current float64
	Max     float64
}

// Fraction is Current/Max in [0, 1].
func (h HealthBar) Fraction() float64 {
	if h.Max <= 0 {
		return 0
	}
	return max(0, min(1, h.Current/h.Max))
}

type Enemy struct {
	*Body
	HealthBar HealthBar

	Speed         float64
	ContactDamage float64
	Score         int

	world    World
	counters map[string]float64
}

func NewEnemy(id ID, world World, health, speed, contactDamage float64, score int) *Enemy {
	return &Enemy{
		Body:          NewBody(id, KindEnemy),
		HealthBar:     HealthBar{Current: health, Max: health},
		Speed:         speed,
		ContactDamage: contactDamage,
		Score:         score,
		world:         world,
		counters:      make(map[string]float64),
	}
}

func (e *Enemy) Collide(c Contact) {
	if e.ShouldDelete() {
		return
	}
	e.hits++
	e.world.Dispatch(event.Event{
		Type:   event.Hit,
		Time:   e.world.Now(),
		Entity: uint64(e.id),
		Kind:   string(e.kind),
		Name:   c.Compound,
	})
	e.Damage(c.Damage)
}

// Damage lowers health; reaching zero kills the enemy and scores it.
func (e *Enemy) Damage(amount float64) {
	if amount <= 0 || e.ShouldDelete() {
		return
	}
	e.HealthBar.Current = max(0, e.HealthBar.Current-amount)
	if e.HealthBar.Current > 0 {
		return
	}

	e.MarkForDeletion()
	e.world.AddScore(e.Score)
	e.world.Dispatch(event.Event{
		Type:   event.Killed,
		Time:   e.world.Now(),
		Entity: uint64(e.id),
		Kind:   string(e.kind),
		Amount: e.Score,
	})
}

func (e *Enemy) Shift(kind string, delta float64) float64 {
	v := max(0, e.counters[kind]+delta)
	if v == 0 {
		delete(e.counters, kind)
	} else {
		e.counters[kind] = v
	}
	return v
}

func (e *Enemy) Remaining(kind string) float64 { return e.counters[kind] }

// Stunned enemies do not move.
func (e *Enemy) Stunned() bool { return e.counters[effect.Stun] > 0 }

// Advance moves the enemy over the sphere surface toward target by up to
// step world units, keeping its distance from the sphere centre.
func (e *Enemy) Advance(target mgl64.Vec3, step float64) {
	if step <= 0 || e.phase != Ready {
		return
	}

	pos := e.Position()
	if geom.Degenerate(pos) {
		return
	}
	to := target.Sub(pos)
	dir := geom.Project(to, pos.Normalize())
	if geom.Degenerate(dir) {
		return
	}

	step = min(step, to.Len())
	next := pos.Add(dir.Normalize().Mul(step)).Normalize().Mul(pos.Len())
	e.Translate(next.Sub(pos))
}

// Mine yields Amount of Element when hit and is destroyed.
type Mine struct {
	*Body
	Element string
	Amount  int

	world World
}

func NewMine(id ID, world World, element string, amount int) *Mine {
	return &Mine{Body: NewBody(id, KindMine), Element: element, Amount: amount, world: world}
}

func (m *Mine) Collide(Contact) {
	if m.ShouldDelete() {
		return
	}
	m.hits++
	m.world.Collect(m.Element, m.Amount)
	m.MarkForDeletion()
}

// Cloud yields Amount of Element per hit, plus an optional power-up, until
// its charges run out.
type Cloud struct {
	*Body
	Element string
	Amount  int
	Charges int
	PowerUp string

	world World
}

func NewCloud(id ID, world World, element string, amount, charges int, powerUp string) *Cloud {
	return &Cloud{
		Body:    NewBody(id, KindCloud),
		Element: element,
		Amount:  amount,
		Charges: max(1, charges),
		PowerUp: powerUp,
		world:   world,
	}
}

func (c *Cloud) Collide(Contact) {
	if c.ShouldDelete() {
		return
	}
	c.hits++
	c.world.Collect(c.Element, c.Amount)
	if c.PowerUp != "" {
		c.world.PowerUp(c.PowerUp)
	}
	c.Charges--
	if c.Charges <= 0 {
		c.MarkForDeletion()
	}
}

// Lab unlocks its compound when clicked.
type Lab struct {
	*Body
	Compound string

	onClick func()
}

func NewLab(id ID, compound string) *Lab {
	return &Lab{Body: NewBody(id, KindLab), Compound: compound}
}

// OnClick sets the click handler, binding it to the handle once loaded.
func (l *Lab) OnClick(fn func()) {
	l.onClick = fn
	if c, ok := l.Handle.(Clickable); ok && l.phase == Ready {
		c.OnClick(fn)
	}
}

func (l *Lab) Attach(h Handle) {
	l.Body.Attach(h)
	if c, ok := h.(Clickable); ok && l.onClick != nil && l.phase == Ready {
		c.OnClick(l.onClick)
	}
}

// Click runs the handler directly, for hosts without pointer picking.
func (l *Lab) Click() {
	if l.onClick != nil && l.phase == Ready {
		l.onClick()
	}
}

type Projectile struct {
	*Body
	Compound string
	Damage   float64
}

func NewProjectile(id ID, compound string, damage float64) *Projectile {
	return &Projectile{Body: NewBody(id, KindProjectile), Compound: compound, Damage: damage}
}

type Axe struct {
	*Body
	Damage float64
}

func NewAxe(id ID, damage float64) *Axe {
	return &Axe{Body: NewBody(id, KindAxe), Damage: damage}
}
