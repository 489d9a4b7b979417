package db

import (
	"strings"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// Role is the electrical role of an export.
type Role int

const (
	RoleBidirectional Role = iota
	RoleInput
	RoleOutput
	RolePower
	RoleGround
)

var roleNames = [...]string{"bidirectional", "input", "output", "power", "ground"}

func (r Role) String() string {
	if int(r) < len(roleNames) && r >= 0 {
		return roleNames[r]
	}
	return "unknown"
}

// ParseRole parses a role name. The empty string is bidirectional.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "", "bidirectional", "inout":
		return RoleBidirectional, nil
	case "input", "in":
		return RoleInput, nil
	case "output", "out":
		return RoleOutput, nil
	case "power", "vdd":
		return RolePower, nil
	case "ground", "gnd", "vss":
		return RoleGround, nil
	}
	return 0, errors.Wrap(errors.ErrCodeInvalidArgument, ErrInvalidRole, "%q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Export publishes a pin port under a name so that it is visible outside the
// cell.
type Export struct {
	Name string
	Role Role
	Port *Port
}
