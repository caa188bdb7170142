package updater

// Frame is handed to every updater during a tick.
type Frame struct {
	DeltaTime float64
	Elapsed   float64
	Tick      uint64
	Commands  *Commands
}

func newFrame(dt, elapsed float64, tick uint64) *Frame {
	return &Frame{
		DeltaTime: dt,
		Elapsed:   elapsed,
		Tick:      tick,
		Commands:  newCommands(),
	}
}
