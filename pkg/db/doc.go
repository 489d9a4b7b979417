// Package db is the layout database that the router writes into.
//
// A [Library] is bound to one [tech.Technology] and owns prototypes and
// cells. Prototypes come in three kinds: pins (one per routing layer),
// vias (one per via type) and devices (declared by the caller with named
// ports). A [Cell] holds placed [Instance] values, [Arc] wires between
// instance ports, and named [Export] values.
//
// Every coordinate written into a cell passes through [geom.Round], so
// repeated placement at computed positions lands on the same grid point.
//
// # Errors
//
// Argument failures wrap one of the sentinel errors below with
// errors.ErrCodeInvalidArgument, so callers can test either the code or the
// sentinel:
//
//	_, err := cell.NewArc(m1, 0, a, b)
//	if stderrors.Is(err, db.ErrLayerMismatch) { ... }
//	if errors.Is(err, errors.ErrCodeInvalidArgument) { ... }
//
// A Cell is not safe for concurrent use.
package db
