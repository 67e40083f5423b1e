package geometry

import (
	"fmt"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

/** @brief Lifecycle of a feedback buffer. */
type FeedbackState uint8

const (
	/** @brief Schema set, no native buffers yet. */
	FeedbackDeclared FeedbackState = iota
	/** @brief Vertex buffer allocated, nothing captured. */
	FeedbackInitialized
	/** @brief Pipeline output is being written to the vertex buffer. */
	FeedbackCapturing
	/** @brief A capture finished and its primitive count is known. */
	FeedbackCaptured
)

func (s FeedbackState) String() string {
	switch s {
	case FeedbackDeclared:
		return "declared"
	case FeedbackInitialized:
		return "initialized"
	case FeedbackCapturing:
		return "capturing"
	case FeedbackCaptured:
		return "captured"
	}
	return fmt.Sprintf("FeedbackState(%d)", uint8(s))
}

type capture struct {
	state       FeedbackState
	maxVertices uint32
	kind        metadata.PrimitiveTopology
	primitives  uint32
	query       Handle
}

func (b *Buffer) FeedbackState() FeedbackState {
	return b.capture.state
}

// InitFeedback allocates a vertex buffer for maxElementCount vertices that only the
// pipeline writes to. Staged instances are uploaded when the schema is instanced.
func (b *Buffer) InitFeedback(maxElementCount uint32) error {
	if !b.feedback {
		return b.usageError("InitFeedback", core.ErrNotFeedbackBuffer)
	}
	if b.vertexBuffer.Valid() {
		return b.usageError("InitFeedback", core.ErrFeedbackInitialized)
	}
	stride := b.schema.VertexStride()
	if stride == 0 {
		return b.usageError("InitFeedback", core.ErrEmptySchema)
	}
	if maxElementCount == 0 {
		return b.usageError("InitFeedback", core.ErrInvalidArgument)
	}

	b.ensureVertexArray()
	b.backend.BindVertexArray(b.vertexArray.ID())

	if b.schema.UsesInstancing() {
		ensureBuffer(b.backend, &b.instanceBuffer)
		b.uploadInstances()
	}

	b.vertexBuffer = newHandle(b.backend, metadata.ObjectKindBuffer)
	b.backend.BindBuffer(metadata.BufferTargetArray, b.vertexBuffer.ID())
	b.backend.BufferData(metadata.BufferTargetArray, int(maxElementCount*stride), nil, metadata.BufferUsageDynamicDraw)
	b.bindAttributes(false)
	b.backend.BindVertexArray(0)

	b.schema.Freeze()
	b.capture.maxVertices = maxElementCount
	b.capture.state = FeedbackInitialized
	return nil
}

// StartCapture binds the vertex buffer as capture target and starts counting written
// primitives of kind. Every draw issued until EndCapture is captured.
func (b *Buffer) StartCapture(kind metadata.PrimitiveTopology) error {
	if !b.feedback {
		return b.usageError("StartCapture", core.ErrNotFeedbackBuffer)
	}
	switch b.capture.state {
	case FeedbackDeclared:
		return b.usageError("StartCapture", core.ErrNotUploaded)
	case FeedbackCapturing:
		return b.usageError("StartCapture", core.ErrCaptureActive)
	}
	switch kind {
	case metadata.PrimitiveTopologyPoints, metadata.PrimitiveTopologyLines, metadata.PrimitiveTopologyTriangles:
	default:
		return b.usageError("StartCapture", fmt.Errorf("capture kind %s: %w", kind, core.ErrInvalidArgument))
	}

	b.backend.BindVertexArray(b.vertexArray.ID())
	b.backend.BindBufferBase(metadata.BufferTargetTransformFeedback, 0, b.vertexBuffer.ID())
	b.backend.BeginTransformFeedback(kind)
	b.capture.query = newHandle(b.backend, metadata.ObjectKindQuery)
	b.backend.BeginQuery(metadata.QueryTargetPrimitivesWritten, b.capture.query.ID())
	b.backend.BindVertexArray(0)

	b.capture.kind = kind
	b.capture.primitives = 0
	b.capture.state = FeedbackCapturing
	return nil
}

// EndCapture stops capturing and returns the number of primitives written. Reading the
// count waits for the pipeline.
func (b *Buffer) EndCapture() (uint32, error) {
	if !b.feedback {
		return 0, b.usageError("EndCapture", core.ErrNotFeedbackBuffer)
	}
	if b.capture.state != FeedbackCapturing {
		return 0, b.usageError("EndCapture", core.ErrCaptureInactive)
	}

	b.backend.EndQuery(metadata.QueryTargetPrimitivesWritten)
	b.capture.primitives = b.backend.QueryResult(b.capture.query.ID())
	b.capture.query.Release(b.backend)
	b.backend.EndTransformFeedback()
	b.backend.BindBufferBase(metadata.BufferTargetTransformFeedback, 0, 0)

	b.capture.state = FeedbackCaptured
	if v := b.CapturedVertexCount(); v > b.capture.maxVertices {
		core.LogWarn("%s captured %d vertices into room for %d", b.name, v, b.capture.maxVertices)
	}
	return b.capture.primitives, nil
}

func (b *Buffer) CapturedPrimitiveCount() uint32 {
	return b.capture.primitives
}

// CaptureTopology is the primitive kind of the last capture.
func (b *Buffer) CaptureTopology() metadata.PrimitiveTopology {
	return b.capture.kind
}

// CapturedVertexCount converts the captured primitive count to vertices: 3 per triangle,
// 2 per line, 1 per point.
func (b *Buffer) CapturedVertexCount() uint32 {
	return b.capture.primitives * b.capture.kind.VerticesPerPrimitive()
}

// FeedbackCapacity is the number of vertices the capture buffer has room for.
func (b *Buffer) FeedbackCapacity() uint32 {
	return b.capture.maxVertices
}
