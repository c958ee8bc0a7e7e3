package uniforms

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnsupported indicates an operation the active backend's binding model
	// does not provide.
	ErrUnsupported = errors.New("unsupported on this backend")

	// ErrIndexOutOfRange indicates a negative suballocation index or one whose
	// registration would exceed the buffer's allocation capacity.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotFound indicates that no suballocated buffer owns a uniform with the
	// requested name.
	ErrNotFound = errors.New("not found")
)

func (su *shaderUniforms) SetSuballocationIndex(name string, index int) error {
	if !su.policy.suballocates() {
		return fmt.Errorf("uniforms: suballocation of %q: %w", name, ErrUnsupported)
	}
	if index < 0 {
		return fmt.Errorf("uniforms: suballocation index %d for %q: %w", index, name, ErrIndexOutOfRange)
	}

	found := false
	for _, slot := range su.uniformsByName[name] {
		group := slot.group
		if group == nil || !group.isSuballocated {
			continue
		}
		if slices.Contains(group.suballocations, index) {
			// Re-selecting a registered index is idempotent.
			group.currentIndex = index
			found = true
			continue
		}
		// A fresh index claims one more unit; reject before mutating anything
		// if the allocation cannot hold it.
		needed := uint64(len(group.suballocations)+1) * group.suballocationUnit
		if needed > uint64(len(group.allocation.data)) {
			return fmt.Errorf("uniforms: buffer %q cannot hold %d suballocations of %d bytes: %w",
				group.desc.Name, len(group.suballocations)+1, group.suballocationUnit, ErrIndexOutOfRange)
		}
		group.suballocations = append(group.suballocations, index)
		group.currentIndex = index
		found = true
	}
	if !found {
		return fmt.Errorf("uniforms: no suballocated buffer owns uniform %q: %w", name, ErrNotFound)
	}
	return nil
}
