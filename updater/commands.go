package updater

// Commands buffers work produced during a tick. Schedules are appended to the
// queue once every task of the tick has run, so a task scheduled mid-tick
// first runs on the next tick. Deferred functions run after that.
type Commands struct {
	schedules []Updater
	defers    []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Schedule queues a task to join the queue at the end of the tick.
func (c *Commands) Schedule(u Updater) {
	c.schedules = append(c.schedules, u)
}

// Defer queues a function to run at the end of the tick.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len is the number of buffered operations.
func (c *Commands) Len() int {
	return len(c.schedules) + len(c.defers)
}

// Flush appends buffered schedules to q, runs deferred functions and resets
// the buffer.
func (c *Commands) Flush(q *Queue) {
	for _, u := range c.schedules {
		q.append(u)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.schedules = c.schedules[:0]
	c.defers = c.defers[:0]
}
