package updater

// Disposable is a resource released when the task owning it finishes.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a plain function to Disposable.
type DisposeFunc func()

func (f DisposeFunc) Dispose() { f() }

// Lifecycle is the part of every task state the queue looks at. Task states
// embed it so that each one carries a Finished flag and the resources to
// release once it is set.
type Lifecycle struct {
	Finished bool
	ToDelete []Disposable
}

// Status lets any state embedding Lifecycle satisfy Stateful.
func (l Lifecycle) Status() Lifecycle { return l }

// Done returns a finished lifecycle that releases toDelete.
func Done(toDelete ...Disposable) Lifecycle {
	return Lifecycle{Finished: true, ToDelete: toDelete}
}

// Stateful is implemented by task states (and by updaters that want their
// resources released when the queue is cleared).
type Stateful interface {
	Status() Lifecycle
}

// Owner is implemented by task states that hold resources for their whole
// run, not only once they finish. Queue.Clear releases them.
type Owner interface {
	Owned() []Disposable
}

// Updater is one unit of per-frame work. Update runs once per tick until it
// reports Finished.
type Updater interface {
	Name() string
	Update(frame *Frame) (Lifecycle, error)
}

// Step advances a task state by one frame.
type Step[S Stateful] func(state S, frame *Frame) (S, error)

// Task pairs a step function with the state it threads from frame to frame.
type Task[S Stateful] struct {
	name  string
	step  Step[S]
	State S
}

// New creates a task starting from initial.
func New[S Stateful](name string, initial S, step Step[S]) *Task[S] {
	return &Task[S]{name: name, step: step, State: initial}
}

func (t *Task[S]) Name() string { return t.name }

// Update runs the step function. On error the previous state is kept.
func (t *Task[S]) Update(frame *Frame) (Lifecycle, error) {
	next, err := t.step(t.State, frame)
	if err != nil {
		return Lifecycle{}, err
	}
	t.State = next
	return next.Status(), nil
}

func (t *Task[S]) Status() Lifecycle { return t.State.Status() }

// Owned forwards to the state when it is an Owner.
func (t *Task[S]) Owned() []Disposable {
	if o, ok := any(t.State).(Owner); ok {
		return o.Owned()
	}
	return nil
}

// Func is an updater without state of its own, for closures that only need
// to report whether they are done.
type Func struct {
	name string
	fn   func(frame *Frame) (Lifecycle, error)
}

func NewFunc(name string, fn func(frame *Frame) (Lifecycle, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Update(frame *Frame) (Lifecycle, error) { return f.fn(frame) }
