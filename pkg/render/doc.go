// Package render serializes routed cells and draws them.
//
// [FromCell] flattens a [db.Cell] into a [Layout], the serialization format
// shared by the CLI, the HTTP API, the cache and the layout store. A Layout
// carries everything the sinks need, so cached layouts can be redrawn
// without rebuilding the cell.
//
// Sinks:
//   - [MarshalLayout]: pretty-printed JSON
//   - [RenderSVG]: geometry view, one color per layer, y pointing up
//   - [ToDOT]: connectivity view in Graphviz DOT; [RenderGraphSVG] lays it
//     out with Graphviz
//
// [Render] produces several formats in one call.
package render
