package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL
// specification. Struct layouts additionally carry the resolved member placements,
// which feed the pipeline's uniform reflection.
type wgslTypeLayout struct {
	size    uint64
	align   uint64
	members []wgslMemberLayout
}

// wgslMemberLayout is one struct field placed at its aligned offset.
type wgslMemberLayout struct {
	name        string
	typeName    string
	offset      uint64
	arrayLength int
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// parsedResource is one @group/@binding declaration extracted from the source.
type parsedResource struct {
	group        int
	binding      int
	addressSpace string
	varName      string
	typeName     string
}
