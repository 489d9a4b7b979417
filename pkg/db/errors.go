package db

import "errors"

var (
	// ErrNilPort is returned when a nil port is passed to a cell operation.
	ErrNilPort = errors.New("port must not be nil")

	// ErrNilProto is returned by [Cell.NewInstance] when proto is nil.
	ErrNilProto = errors.New("prototype must not be nil")

	// ErrForeignPort is returned by [Cell.NewArc] when either port belongs to
	// an instance of another cell.
	ErrForeignPort = errors.New("port belongs to another cell")

	// ErrForeignProto is returned by [Cell.NewInstance] when the prototype
	// was created by another library.
	ErrForeignProto = errors.New("prototype belongs to another library")

	// ErrLayerMismatch is returned by [Cell.NewArc] when a port cannot
	// connect to the arc's layer.
	ErrLayerMismatch = errors.New("port does not connect to layer")

	// ErrUnknownLayer is returned when a layer does not belong to the
	// library's technology.
	ErrUnknownLayer = errors.New("layer not in technology")

	// ErrNegativeSize is returned for negative widths or heights.
	ErrNegativeSize = errors.New("size must not be negative")

	// ErrInvalidOrientation is returned for rotations other than multiples
	// of 90 degrees.
	ErrInvalidOrientation = errors.New("invalid orientation")

	// ErrDuplicateName is returned when a cell, instance, prototype or
	// export name is already taken.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrInvalidRole is returned by [ParseRole] for unknown export roles.
	ErrInvalidRole = errors.New("invalid export role")
)
