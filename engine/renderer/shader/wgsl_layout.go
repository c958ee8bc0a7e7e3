package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap maps WGSL primitive, vector, and matrix type names
// to their byte size and alignment per the WGSL specification.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	// Scalars
	"f32":  {size: 4, align: 4},
	"i32":  {size: 4, align: 4},
	"u32":  {size: 4, align: 4},
	"f16":  {size: 2, align: 2},
	"bool": {size: 4, align: 4},

	// Vectors – f32
	"vec2<f32>": {size: 8, align: 8},
	"vec2f":     {size: 8, align: 8},
	"vec3<f32>": {size: 12, align: 16},
	"vec3f":     {size: 12, align: 16},
	"vec4<f32>": {size: 16, align: 16},
	"vec4f":     {size: 16, align: 16},

	// Vectors – i32
	"vec2<i32>": {size: 8, align: 8},
	"vec2i":     {size: 8, align: 8},
	"vec3<i32>": {size: 12, align: 16},
	"vec3i":     {size: 12, align: 16},
	"vec4<i32>": {size: 16, align: 16},
	"vec4i":     {size: 16, align: 16},

	// Vectors – u32
	"vec2<u32>": {size: 8, align: 8},
	"vec2u":     {size: 8, align: 8},
	"vec3<u32>": {size: 12, align: 16},
	"vec3u":     {size: 12, align: 16},
	"vec4<u32>": {size: 16, align: 16},
	"vec4u":     {size: 16, align: 16},

	// Matrices – matCxR<f32>: C columns of vecR<f32>, stride = roundUp(align(vecR), size(vecR))
	"mat2x2<f32>": {size: 16, align: 8},
	"mat2x3<f32>": {size: 32, align: 16},
	"mat2x4<f32>": {size: 32, align: 16},
	"mat3x2<f32>": {size: 24, align: 8},
	"mat3x3<f32>": {size: 48, align: 16},
	"mat3x4<f32>": {size: 48, align: 16},
	"mat4x2<f32>": {size: 32, align: 8},
	"mat4x3<f32>": {size: 64, align: 16},
	"mat4x4<f32>": {size: 64, align: 16},
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// parseArrayType splits a fixed-size array type "array<T, N>" into its element
// type and count. Runtime-sized arrays "array<T>" return count 0.
//
// Parameters:
//   - typeName: the WGSL type name
//
// Returns:
//   - string: the element type name
//   - uint64: the declared element count, 0 for runtime-sized arrays
//   - bool: false if typeName is not an array type
func parseArrayType(typeName string) (string, uint64, bool) {
	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return "", 0, false
	}
	inner := typeName[6 : len(typeName)-1]
	elemType, countStr, hasCount := strings.Cut(inner, ",")
	elemType = strings.TrimSpace(elemType)
	if !hasCount {
		return elemType, 0, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return elemType, count, true
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously-computed struct layouts. Handles fixed-size arrays (array<T, N>) and
// returns the element stride for runtime-sized arrays so callers can scale by count.
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "f32", "SceneUniforms", "array<vec4f, 6>"
//   - knownTypes: a map of already-resolved type names to their layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: true if the type could be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	if elemType, count, ok := parseArrayType(typeName); ok {
		elemLayout, resolved := resolveTypeLayout(elemType, knownTypes)
		if !resolved {
			return wgslTypeLayout{}, false
		}
		stride := roundUpAlign(elemLayout.align, elemLayout.size)
		if count == 0 {
			// Runtime-sized array: one element stride is the minimum useful size.
			return wgslTypeLayout{size: stride, align: elemLayout.align}, true
		}
		return wgslTypeLayout{size: count * stride, align: elemLayout.align}, true
	}

	return wgslTypeLayout{}, false
}

// computeStructLayout computes the byte size, alignment, and member placements of a
// single WGSL struct: each field lands at the next offset aligned to its type, and
// the total size is rounded up to the struct's alignment (max alignment of all fields).
// Fields with @builtin attributes are not part of the buffer layout and are skipped.
//
// Parameters:
//   - ps: the parsed struct whose layout to compute
//   - knownTypes: a map of already-resolved type names to their layouts
//
// Returns:
//   - wgslTypeLayout: the computed layout including member placements
//   - bool: true if all fields could be resolved
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	members := make([]wgslMemberLayout, 0, len(ps.fields))

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}

		memberType := field.typeName
		arrayLength := 1
		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		if elemType, count, isArray := parseArrayType(field.typeName); isArray && count > 0 {
			memberType = elemType
			arrayLength = int(count)
		}

		offset = roundUpAlign(fieldLayout.align, offset)
		members = append(members, wgslMemberLayout{
			name:        field.name,
			typeName:    memberType,
			offset:      offset,
			arrayLength: arrayLength,
		})
		offset += fieldLayout.size

		if fieldLayout.align > maxAlign {
			maxAlign = fieldLayout.align
		}
	}

	size := roundUpAlign(maxAlign, offset)
	return wgslTypeLayout{size: size, align: maxAlign, members: members}, true
}

// computeStructSizes computes the layout of all parsed WGSL structs, resolving
// dependencies between structs iteratively for fields typed as another struct.
//
// Parameters:
//   - structs: all parsed struct blocks from the WGSL source
//
// Returns:
//   - map[string]wgslTypeLayout: a map from struct name to computed layout
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]

		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}

		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}

	return resolved
}

// splitTypeParams splits a WGSL parameterized type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
//
// Parameters:
//   - typeName: the WGSL type string to split
//
// Returns:
//   - base: the type name before the first angle bracket
//   - params: the content between angle brackets, or empty if none
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested per the WGSL specification.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle
// brackets, so types like array<vec4f, 6> survive struct-field splitting.
//
// Parameters:
//   - s: the string to split (typically the body of a WGSL struct)
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
