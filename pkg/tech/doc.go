// Package tech implements the layer-height model of a fabrication process.
//
// Poly and metal are the routing layers. Each routing layer is assigned a
// unique integer height: height 0 is the gate (poly) layer and heights
// increase by one per metal. Layers at the same height connect directly;
// layers at adjacent heights connect through exactly one via type. Well and
// diffusion layers have no height and are not represented here.
//
// # Processes
//
// A [Process] is a plain data record (layers, vias, a reserved-space
// strategy name) that can be decoded from TOML. [New] validates a process and
// builds an immutable [Technology]:
//
//	reg := tech.Builtin()
//	t, err := reg.Lookup("mocmos")
//	if err != nil {
//	    return err // errors.ErrCodeTechnologyNotFound or ErrCodeInvalidTechnology
//	}
//	m2, _ := t.Layer("metal-2")
//	h, _ := t.HeightOf(m2) // 2
//	via, _ := t.ViaAbove(h) // metal-2-metal-3-con
//
// There is no process-wide technology singleton. [Builtin] returns a fresh
// registry on every call so tests can construct their own tables.
//
// # Concurrency
//
// A Technology is read-only after construction and may be shared across
// goroutines. A Registry is not safe for concurrent Register calls.
package tech
