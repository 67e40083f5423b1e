package metadata

import "fmt"

/** @brief The binding point a buffer object is attached to. */
type BufferTarget uint8

const (
	/** @brief Per-vertex or per-instance attribute data. */
	BufferTargetArray BufferTarget = iota
	/** @brief 32-bit index data. */
	BufferTargetElementArray
	/** @brief Destination of captured pipeline output. */
	BufferTargetTransformFeedback
)

func (t BufferTarget) String() string {
	switch t {
	case BufferTargetArray:
		return "array"
	case BufferTargetElementArray:
		return "element_array"
	case BufferTargetTransformFeedback:
		return "transform_feedback"
	}
	return fmt.Sprintf("BufferTarget(%d)", uint8(t))
}

/**
 * @brief Upload hint passed to the driver when buffer storage is (re)specified.
 * By default data is expected not to change.
 */
type BufferUsage uint8

const (
	/** @brief Set once, drawn many times. */
	BufferUsageStaticDraw BufferUsage = iota
	/** @brief Changed often, drawn many times. */
	BufferUsageDynamicDraw
	/** @brief Set once, drawn a few times at most. */
	BufferUsageStreamDraw
)

func (u BufferUsage) Valid() bool {
	return u <= BufferUsageStreamDraw
}

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageStaticDraw:
		return "static"
	case BufferUsageDynamicDraw:
		return "dynamic"
	case BufferUsageStreamDraw:
		return "stream"
	}
	return fmt.Sprintf("BufferUsage(%d)", uint8(u))
}

// ParseBufferUsage accepts the names returned by BufferUsage.String.
func ParseBufferUsage(s string) (BufferUsage, error) {
	switch s {
	case "static", "":
		return BufferUsageStaticDraw, nil
	case "dynamic":
		return BufferUsageDynamicDraw, nil
	case "stream":
		return BufferUsageStreamDraw, nil
	}
	return 0, fmt.Errorf("unknown buffer usage %q", s)
}

/** @brief Scalar type of a single attribute element. */
type ScalarType uint8

const (
	ScalarTypeFloat32 ScalarType = iota
	ScalarTypeUInt32
	ScalarTypeInt32
	ScalarTypeUByte
)

// ByteSize is the per-element size on the GPU side. UByte elements occupy 4 bytes as
// well, since attributes are kept 4-byte aligned.
func (s ScalarType) ByteSize() uint32 {
	return 4
}

// Integer reports whether the attribute goes through the integer attribute path
// (no conversion to float in the shader).
func (s ScalarType) Integer() bool {
	return s != ScalarTypeFloat32
}

func (s ScalarType) Valid() bool {
	return s <= ScalarTypeUByte
}

func (s ScalarType) String() string {
	switch s {
	case ScalarTypeFloat32:
		return "float32"
	case ScalarTypeUInt32:
		return "uint32"
	case ScalarTypeInt32:
		return "int32"
	case ScalarTypeUByte:
		return "ubyte"
	}
	return fmt.Sprintf("ScalarType(%d)", uint8(s))
}

/** @brief The primitive topology used for drawing and for feedback capture. */
type PrimitiveTopology uint8

const (
	PrimitiveTopologyPoints PrimitiveTopology = iota
	PrimitiveTopologyLines
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangles
	PrimitiveTopologyTriangleStrip
)

// VerticesPerPrimitive is the number of vertices one captured primitive of this kind
// writes: 3 for triangles, 2 for lines, 1 otherwise.
func (p PrimitiveTopology) VerticesPerPrimitive() uint32 {
	switch p {
	case PrimitiveTopologyTriangles:
		return 3
	case PrimitiveTopologyLines:
		return 2
	default:
		return 1
	}
}

func (p PrimitiveTopology) String() string {
	switch p {
	case PrimitiveTopologyPoints:
		return "points"
	case PrimitiveTopologyLines:
		return "lines"
	case PrimitiveTopologyLineStrip:
		return "line_strip"
	case PrimitiveTopologyTriangles:
		return "triangles"
	case PrimitiveTopologyTriangleStrip:
		return "triangle_strip"
	}
	return fmt.Sprintf("PrimitiveTopology(%d)", uint8(p))
}

/** @brief Asynchronous query kinds. */
type QueryTarget uint8

const (
	/** @brief Number of primitives written to feedback buffers. */
	QueryTargetPrimitivesWritten QueryTarget = iota
)

/** @brief The native object kinds the renderer hands out names for. */
type ObjectKind uint8

const (
	ObjectKindBuffer ObjectKind = iota
	ObjectKindVertexArray
	ObjectKindQuery
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectKindBuffer:
		return "buffer"
	case ObjectKindVertexArray:
		return "vertex array"
	case ObjectKindQuery:
		return "query"
	}
	return fmt.Sprintf("ObjectKind(%d)", uint8(k))
}
