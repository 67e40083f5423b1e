package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/headless"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// useCaptureProgram makes a program with captured outputs current, as transform
// feedback requires.
func useCaptureProgram(backend *headless.Backend) {
	backend.NewFeedbackProgram([]string{"outPosition"}).Use()
}

// captureTriangles runs n triangles of a throwaway source mesh into target.
func captureTriangles(t *testing.T, backend *headless.Backend, target *Buffer, n int) uint32 {
	t.Helper()
	src := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, src.PushVertices(points(n*3)...))
	require.NoError(t, src.UploadVertices())

	useCaptureProgram(backend)
	require.NoError(t, target.StartCapture(metadata.PrimitiveTopologyTriangles))
	backend.BindVertexArray(src.VertexArrayID())
	backend.DrawArrays(metadata.PrimitiveTopologyTriangles, 0, int32(src.UploadedVertexCount()))
	backend.BindVertexArray(0)
	prims, err := target.EndCapture()
	require.NoError(t, err)
	src.Remove()
	return prims
}

func TestFeedbackCaptureCountsVertices(t *testing.T) {
	backend := headless.New()
	fb := NewBuffer(backend, point2Schema(t), AsFeedback())
	assert.Equal(t, FeedbackDeclared, fb.FeedbackState())

	require.NoError(t, fb.InitFeedback(300))
	assert.Equal(t, FeedbackInitialized, fb.FeedbackState())
	assert.True(t, fb.Flags().FeedbackInitialized)
	assert.Len(t, backend.BufferContents(fb.VertexBufferID()), 300*8)
	assert.Equal(t, metadata.BufferUsageDynamicDraw, backend.BufferUsageOf(fb.VertexBufferID()))

	prims := captureTriangles(t, backend, fb, 10)
	assert.Equal(t, uint32(10), prims)
	assert.Equal(t, FeedbackCaptured, fb.FeedbackState())
	assert.Equal(t, uint32(10), fb.CapturedPrimitiveCount())
	assert.Equal(t, uint32(30), fb.CapturedVertexCount())
	assert.Equal(t, metadata.PrimitiveTopologyTriangles, fb.CaptureTopology())
	assert.False(t, backend.FeedbackActive())
	assert.Equal(t, 0, backend.Live(metadata.ObjectKindQuery))

	// captured again from Captured
	assert.Equal(t, uint32(4), captureTriangles(t, backend, fb, 4))
	assert.Equal(t, uint32(12), fb.CapturedVertexCount())

	read, err := fb.ReadVertexBytes(0, 12)
	require.NoError(t, err)
	assert.Len(t, read, 96)
	assert.Empty(t, backend.Errors())
}

func TestFeedbackRejectsHostData(t *testing.T) {
	backend := headless.New()
	fb := NewBuffer(backend, point2Schema(t), AsFeedback())

	assert.ErrorIs(t, fb.PushVertexBytes(make([]byte, 8)), core.ErrFeedbackBuffer)
	assert.ErrorIs(t, fb.PushIndices(0, 1, 2), core.ErrFeedbackBuffer)
	assert.ErrorIs(t, fb.UploadVertices(), core.ErrFeedbackBuffer)
	assert.ErrorIs(t, fb.UploadIndices(), core.ErrFeedbackBuffer)
	assert.ErrorIs(t, fb.UpdateAllVertexData(), core.ErrFeedbackBuffer)
	assert.ErrorIs(t, fb.UpdateVertexRange(0, 1, make([]byte, 8)), core.ErrFeedbackBuffer)
	assert.False(t, fb.Flags().VertexBufferCreated)
}

func TestFeedbackStateMachineMisuse(t *testing.T) {
	backend := headless.New()

	plain := NewBuffer(backend, point2Schema(t))
	assert.ErrorIs(t, plain.InitFeedback(10), core.ErrNotFeedbackBuffer)
	assert.ErrorIs(t, plain.StartCapture(metadata.PrimitiveTopologyPoints), core.ErrNotFeedbackBuffer)
	_, err := plain.EndCapture()
	assert.ErrorIs(t, err, core.ErrNotFeedbackBuffer)

	fb := NewBuffer(backend, point2Schema(t), AsFeedback())
	assert.ErrorIs(t, fb.StartCapture(metadata.PrimitiveTopologyPoints), core.ErrNotUploaded)
	assert.ErrorIs(t, fb.InitFeedback(0), core.ErrInvalidArgument)
	require.NoError(t, fb.InitFeedback(10))
	assert.ErrorIs(t, fb.InitFeedback(10), core.ErrFeedbackInitialized)

	_, err = fb.EndCapture()
	assert.ErrorIs(t, err, core.ErrCaptureInactive)
	assert.ErrorIs(t, fb.StartCapture(metadata.PrimitiveTopologyTriangleStrip), core.ErrInvalidArgument)

	useCaptureProgram(backend)
	require.NoError(t, fb.StartCapture(metadata.PrimitiveTopologyLines))
	assert.ErrorIs(t, fb.StartCapture(metadata.PrimitiveTopologyLines), core.ErrCaptureActive)
	_, err = fb.EndCapture()
	require.NoError(t, err)
	assert.Empty(t, backend.Errors())
}

func TestFeedbackInitUploadsInstances(t *testing.T) {
	backend := headless.New()
	fb := NewMesh[point2, cell](backend, instancedSchema(t), AsFeedback(), WithoutVertexArray())
	require.NoError(t, fb.PushInstances(cell{1, 1}, cell{2, 2}, cell{3, 3}))
	require.NoError(t, fb.InitFeedback(64))

	flags := fb.Flags()
	assert.True(t, flags.VertexArrayCreated)
	assert.True(t, flags.InstanceBufferCreated)
	assert.Equal(t, uint32(3), fb.UploadedInstanceCount())

	vertexAttrib, ok := backend.Attrib(fb.VertexArrayID(), 0)
	require.True(t, ok)
	assert.Equal(t, fb.VertexBufferID(), vertexAttrib.Buffer)
	instanceAttrib, ok := backend.Attrib(fb.VertexArrayID(), 1)
	require.True(t, ok)
	assert.Equal(t, uint32(1), instanceAttrib.Divisor)
	assert.Len(t, backend.BufferContents(fb.VertexBufferID()), 64*8)
	assert.Empty(t, backend.Errors())
}

func TestRemoveDuringCapture(t *testing.T) {
	backend := headless.New()
	fb := NewBuffer(backend, point2Schema(t), AsFeedback())
	require.NoError(t, fb.InitFeedback(10))
	useCaptureProgram(backend)
	require.NoError(t, fb.StartCapture(metadata.PrimitiveTopologyPoints))

	fb.Remove()
	assert.False(t, backend.FeedbackActive())
	assert.Equal(t, FeedbackDeclared, fb.FeedbackState())
	assert.Equal(t, 0, backend.Live(metadata.ObjectKindQuery))
	assert.Empty(t, backend.Errors())

	// a removed feedback buffer can be initialized again
	require.NoError(t, fb.InitFeedback(10))
}
