// Package plan describes a cell declaratively and routes it.
//
// A [Plan] names a technology and a cell, lists devices with their ports,
// exports, and tracks with the ports to connect onto each. Plans are read
// from TOML or JSON:
//
//	technology = "mocmos"
//	cell = "inv"
//
//	[[device]]
//	name = "mn"
//	width = 10
//	height = 6
//	  [[device.port]]
//	  name = "d"
//	  layers = ["metal-1"]
//	  x = 3
//
//	[[track]]
//	name = "out"
//	axis = "horizontal"
//	layer = "metal-2"
//	  [[track.connect]]
//	  instance = "mn"
//	  port = "d"
//
// [Execute] builds the cell in a library and runs every track in order.
// Connections on one track run in the order listed, so reuse and spine
// decisions are deterministic.
package plan
