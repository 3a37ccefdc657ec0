package lanes_test

import (
	"fmt"

	"github.com/matzehuels/mondrian/pkg/lanes"
)

type call struct {
	name       string
	start, dur float64
}

func (c call) Start() float64    { return c.start }
func (c call) Duration() float64 { return c.dur }

func ExampleLayout() {
	trace := []call{
		{"main", 0, 100},
		{"load", 0, 30},
		{"decode", 10, 15},
		{"draw", 30, 70},
		{"idle", 50, 0},
	}
	out, err := lanes.Layout(trace)
	if err != nil {
		panic(err)
	}
	for _, a := range out {
		fmt.Println(a.Lane, a.Item.name)
	}
	// Output:
	// 0 main
	// 1 load
	// 2 decode
	// 1 draw
}
