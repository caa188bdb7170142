package updater_test

import (
	"fmt"

	"github.com/plus3/earthshot/updater"
)

type fuse struct {
	updater.Lifecycle
	Remaining float64
}

type bomb struct{ name string }

func (b *bomb) Dispose() { fmt.Println("disposed", b.name) }

// ExampleQueue shows a timer task that counts down by the frame delta and
// releases its resource when it runs out. Work scheduled during a tick joins
// the queue once the tick ends.
func ExampleQueue() {
	q := updater.NewQueue(nil)

	q.Schedule(updater.New("fuse", fuse{Remaining: 1}, func(s fuse, f *updater.Frame) (fuse, error) {
		s.Remaining -= f.DeltaTime
		if s.Remaining <= 0 {
			s.Finished = true
			s.ToDelete = []updater.Disposable{&bomb{name: "bomb"}}
			f.Commands.Schedule(updater.NewFunc("echo", func(f *updater.Frame) (updater.Lifecycle, error) {
				fmt.Printf("echo on tick %d\n", f.Tick)
				return updater.Done(), nil
			}))
		}
		return s, nil
	}))

	for i := 0; i < 3; i++ {
		if err := q.Tick(0.5); err != nil {
			fmt.Println(err)
		}
		fmt.Println("live:", q.Len())
	}

	// Output:
	// live: 1
	// disposed bomb
	// live: 1
	// echo on tick 3
	// live: 0
}
