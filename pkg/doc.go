// Package pkg provides the core libraries for mondrian.
//
// # Overview
//
// Mondrian answers two layout questions with the same sweep-and-place
// approach: which row does each timed measure of a trace belong on, and
// where on a fixed-size texture page does each image go. The pkg directory
// is organized into three areas:
//
//  1. Domain logic: [lanes], [trace], [atlas], [geom]
//  2. Output: [render], [render/flame], [render/nodelink]
//  3. Infrastructure: [pipeline], [cache], [storage], [config], [observability]
//
// # Architecture
//
// The trace flow:
//
//	trace JSON (measures or Chrome events)
//	         ↓
//	    [trace] package (decode, normalize to milliseconds)
//	         ↓
//	    [lanes] package (sweep-line lane assignment)
//	         ↓
//	    [render/flame] or [render/nodelink]
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// The atlas flow:
//
//	images (files or sizes)
//	         ↓
//	    [atlas] package (shelf packing, optional sharding)
//	         ↓
//	    page manifests + RGBA page textures
//
// # Quick Start
//
//	measures, _ := trace.ReadTraceFile("trace.json")
//	rs, _ := trace.Stack(measures)
//	svg := flame.RenderSVG(rs)
//
//	sources, _ := atlas.LoadSources("sprites/")
//	pages, _ := atlas.Pack(sources, 1024, 1024)
//	textures, _ := atlas.Build(pages, sources)
//
// # Main Packages
//
// [lanes] - Generic sweep-line assignment of intervals to the lowest free
// lane. Works on anything with Start and Duration.
//
// [trace] - Measures, renderables, extents, viewport math, hit testing, and
// trace file decoding.
//
// [atlas] - Shelf packing into fixed pages, sharded packing, page texture
// building, and manifests.
//
// [geom] - Vectors and axis-aligned rectangles shared by the other packages.
//
// [pipeline] - Layout, render, and pack stages with caching, used by both
// the CLI and the HTTP server.
//
// [cache] - File, Redis, and null caches with content-hashed keys.
//
// [storage] - Layout and atlas documents in memory or MongoDB.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [lanes]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/lanes
// [trace]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/trace
// [atlas]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/atlas
// [geom]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/geom
// [render]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/render
// [render/flame]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/render/flame
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/storage
// [config]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/mondrian/pkg/observability
package pkg
