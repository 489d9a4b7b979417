// Package pkg provides the core libraries for cellgen standard-cell routing.
//
// # Overview
//
// cellgen generates the interconnect of a standard cell. Devices are placed by
// the caller; cellgen builds via stacks from device ports up to horizontal and
// vertical routing tracks, draws the track wires (with jogs where a port cannot
// line up with its stack), and renders the result.
//
// # Architecture
//
// The typical data flow:
//
//	Routing plan (TOML / JSON)
//	         ↓
//	    [plan] package (parse + validate, build the cell)
//	         ↓
//	    [route] package (via stacks + tracks on the [db] cell)
//	         ↓
//	    [render] package (flatten to a Layout, SVG / JSON / DOT / graph)
//
// [pipeline] runs the three stages with layout and artifact caching and is
// shared by the CLI and the HTTP [server].
//
// # Quick Start
//
// Route a poly gate up to a metal-2 track:
//
//	t, _ := tech.Builtin().Lookup("mocmos")
//	poly, _ := t.Layer("poly-1")
//	m2, _ := t.Layer("metal-2")
//
//	lib := db.NewLibrary(t)
//	cell, _ := lib.NewCell("inv")
//	gate, _ := lib.NewDeviceProto("gate", 2, 2, []db.PortSpec{{Name: "g", Layers: []*tech.Layer{poly}}})
//	inst, _ := cell.NewInstance(gate, 0, 0, 0, 0, geom.R0)
//
//	tr, _ := route.NewHorizontal(cell, t, m2, 4, route.WithCenter(10))
//	conn, _ := tr.ConnectPort(inst.Port("g"))
//	fmt.Println(len(conn.Stack.Vias())) // 2
//
// # Main Packages
//
// ## Domain
//
// [tech] - Layer-height model: conductor layers ordered by height, via
// prototypes between adjacent heights, built-in process tables and TOML
// technology files.
//
// [geom] - Points, rectangles, orientations and grid rounding.
//
// [db] - Layout database: libraries, prototypes, cells, instances, ports,
// arcs and exports.
//
// [route] - Via-stack builder and track router.
//
// [plan] - Declarative cell description executed against a technology.
//
// ## Output
//
// [render] - Flattened layouts and their SVG, JSON, DOT and Graphviz renderings.
//
// ## Infrastructure
//
// [pipeline] - plan → route → render with caching, shared by CLI and API.
//
// [cache] - Null, memory, file and Redis caches behind one interface.
//
// [storage] - Layout archive: memory, file and MongoDB stores.
//
// [server] - HTTP API.
//
// [observability] - Hook interfaces for routing, pipeline, cache and HTTP
// events.
//
// [errors] - Structured error codes.
//
// # Testing
//
//	go test ./...              # All tests
//	go test -short ./...       # Skip Graphviz rendering
//	CELLGEN_MONGO_URI=mongodb://localhost:27017 go test ./pkg/storage
//
// [tech]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/tech
// [geom]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/geom
// [db]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/db
// [route]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/route
// [plan]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/plan
// [render]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/storage
// [server]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cellgen/pkg/errors
package pkg
