package flame_test

import (
	"fmt"

	"github.com/matzehuels/mondrian/pkg/render/flame"
	"github.com/matzehuels/mondrian/pkg/trace"
)

func ExampleBuild() {
	rs, _ := trace.Stack([]trace.Measure{
		{Name: "main", StartTime: 0, Duration: 100},
		{Name: "parse", StartTime: 0, Duration: 60},
	})
	for _, b := range flame.Build(rs).Bars {
		fmt.Printf("%s lane=%d x=%.0f w=%.0f label=%q\n", b.Name, b.Lane, b.X, b.Width, b.Label)
	}
	// Output:
	// main lane=0 x=0 w=99 label="main"
	// parse lane=1 x=0 w=59 label="parse"
}
