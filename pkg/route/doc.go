// Package route builds via stacks and connects ports onto routing tracks.
//
// # Via stacks
//
// [Builder.BuildStack] places the minimal chain of vias joining two routing
// layers at one point: one via per height step, each at least its minimum
// legal size, joined by zero-length arcs on the intermediate layers. When
// both layers are the same a single pin is placed instead. The returned
// [ViaStack] exposes Port1 on the first layer argument and Port2 on the
// second.
//
// # Tracks
//
// A [Track] is one routing line on a layer at a fixed perpendicular
// coordinate. Horizontal tracks run along x, vertical tracks along y.
// [Track.Connect] drops a via stack onto the line for each port and wires the
// port to it:
//
//	tr, _ := route.NewHorizontal(cell, t, m2, 4)
//	for _, p := range ports {
//	    if _, err := tr.ConnectPort(p); err != nil {
//	        return err // abort the cell
//	    }
//	}
//
// A stack already on the track is reused when its port-side layer matches
// and it lies closer than one via pitch to the new target; placing a second
// stack there would violate via spacing. Each new stack after the first is
// joined to its nearest neighbour by a spine arc on the track layer.
//
// Tracks are not safe for concurrent use. Errors leave already placed
// geometry in the cell.
package route
