package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds cell, instance, export and layer names.
const maxNameLength = 128

// ValidateName validates an identifier used for cells, instances and exports.
//
// The validation rules:
//   - No empty names
//   - No control characters or whitespace
//   - No path separators (names end up in file names and cache keys)
//   - Maximum length of 128 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "%s name %q contains whitespace or control characters", kind, name)
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "%s name %q cannot contain path separators", kind, name)
	}
	return nil
}

// layerNameRegex matches conductor layer names such as "poly-1" or "metal-3".
var layerNameRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateLayerName validates a conductor layer name.
// Layer names are lowercase and hyphen-separated.
func ValidateLayerName(name string) error {
	if err := ValidateName("layer", name); err != nil {
		return err
	}
	if !layerNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid layer name: %q", name)
	}
	return nil
}

// ValidateTechnologyName validates a technology (process) name.
func ValidateTechnologyName(name string) error {
	if err := ValidateName("technology", name); err != nil {
		return err
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "technology name cannot start with a dot: %q", name)
	}
	return nil
}
