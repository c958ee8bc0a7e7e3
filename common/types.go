// package common contains common types that are used throughout this library. They are not interface-wrapped structs, just plain value
// types that express commonly used GPU data-types.
package common

// The vector and matrix types below mirror the CPU-side SIMD layout used for shader
// uniform staging: three-component vectors and the columns of 3x3 matrices carry a
// padding float so each lane is 16-byte aligned. Backends that consume byte-packed
// data strip the padding through the Pack* helpers before writing.

// Float2 is a two-component float vector (8 bytes, no padding).
type Float2 [2]float32

// Float3 is a three-component float vector stored in four lanes.
// The fourth lane is alignment padding and is never read by shaders.
type Float3 [4]float32

// Float4 is a four-component float vector (16 bytes).
type Float4 [4]float32

// Float2x2 is a column-major 2x2 float matrix (16 bytes, no padding).
type Float2x2 [4]float32

// Float3x3 is a column-major 3x3 float matrix stored as three padded
// four-lane columns (48 bytes). The fourth lane of each column is padding.
type Float3x3 [12]float32

// Float4x4 is a column-major 4x4 float matrix (64 bytes).
type Float4x4 [16]float32

// Int1 is a single 32-bit signed integer uniform value.
type Int1 int32

// NewFloat3 builds a padded Float3 from three components.
//
// Parameters:
//   - x, y, z: the vector components
//
// Returns:
//   - Float3: the padded vector with a zeroed fourth lane
func NewFloat3(x, y, z float32) Float3 {
	return Float3{x, y, z, 0}
}

// Packed returns the vector's three meaningful components with the padding lane removed.
//
// Returns:
//   - [3]float32: the byte-packed vector
func (v Float3) Packed() [3]float32 {
	return [3]float32{v[0], v[1], v[2]}
}

// Packed returns the matrix's nine meaningful elements with the per-column
// padding lanes removed.
//
// Returns:
//   - [9]float32: the byte-packed column-major matrix
func (m Float3x3) Packed() [9]float32 {
	var out [9]float32
	for c := 0; c < 3; c++ {
		out[c*3+0] = m[c*4+0]
		out[c*3+1] = m[c*4+1]
		out[c*3+2] = m[c*4+2]
	}
	return out
}

// PackFloat3Slice strips the padding lane from a slice of Float3 values, producing
// a tightly packed float array suitable for byte-packed backends. The packing is
// done once for the whole slice rather than per element.
//
// Parameters:
//   - values: the padded vectors to pack
//
// Returns:
//   - []float32: 3*len(values) packed floats
func PackFloat3Slice(values []Float3) []float32 {
	out := make([]float32, 0, 3*len(values))
	for _, v := range values {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// PackFloat3x3Slice strips the per-column padding lanes from a slice of Float3x3
// matrices, producing a tightly packed float array suitable for byte-packed backends.
//
// Parameters:
//   - values: the padded matrices to pack
//
// Returns:
//   - []float32: 9*len(values) packed floats
func PackFloat3x3Slice(values []Float3x3) []float32 {
	out := make([]float32, 0, 9*len(values))
	for _, m := range values {
		for c := 0; c < 3; c++ {
			out = append(out, m[c*4+0], m[c*4+1], m[c*4+2])
		}
	}
	return out
}

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
