package geometry

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/headless"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

type point2 struct {
	X, Y float32
}

type point3 struct {
	X, Y, Z float32
}

type cell struct {
	Column, Row uint32
}

type tinted struct {
	Offset [2]float32
	Colour [4]uint8
	_      [12]byte
}

func point2Schema(t *testing.T) *Schema {
	t.Helper()
	s := NewSchema()
	require.NoError(t, s.AddFloat(2, false))
	return s
}

func instancedSchema(t *testing.T) *Schema {
	t.Helper()
	s := point2Schema(t)
	require.NoError(t, s.AddUint(2, true))
	return s
}

func points(n int) []point2 {
	out := make([]point2, n)
	for i := range out {
		out[i] = point2{X: float32(i), Y: float32(i) * 10}
	}
	return out
}

func TestNewBufferCreatesVertexArray(t *testing.T) {
	backend := headless.New()

	b := NewBuffer(backend, point2Schema(t))
	assert.True(t, b.Flags().VertexArrayCreated)
	assert.True(t, backend.IsVertexArray(b.VertexArrayID()))
	assert.Contains(t, b.Name(), "geometry-")

	deferred := NewBuffer(backend, point2Schema(t), WithoutVertexArray(), WithName("quad"))
	assert.False(t, deferred.Flags().VertexArrayCreated)
	assert.Equal(t, "quad", deferred.Name())
	assert.Equal(t, 1, backend.Live(metadata.ObjectKindVertexArray))
}

func TestUploadVerticesMatchesStagedCount(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, NoInstance](backend, point2Schema(t), WithUsage(metadata.BufferUsageDynamicDraw))
	require.NoError(t, m.PushVertices(points(4)...))
	assert.True(t, m.HasStagedData())
	assert.Equal(t, uint32(0), m.UploadedVertexCount())

	require.NoError(t, m.UploadVertices())
	assert.Equal(t, m.StagedVertexCount(), m.UploadedVertexCount())
	assert.Equal(t, uint32(4), m.UploadedVertexCount())
	assert.True(t, m.Schema().Frozen())

	assert.Len(t, backend.BufferContents(m.VertexBufferID()), 32)
	assert.Equal(t, metadata.BufferUsageDynamicDraw, backend.BufferUsageOf(m.VertexBufferID()))
	attrib, ok := backend.Attrib(m.VertexArrayID(), 0)
	require.True(t, ok)
	assert.True(t, attrib.Enabled)
	assert.False(t, attrib.Integer)
	assert.Equal(t, int32(2), attrib.Size)
	assert.Equal(t, int32(8), attrib.Stride)
	assert.Equal(t, m.VertexBufferID(), attrib.Buffer)
	assert.Empty(t, backend.Errors())
}

func TestPushRejectsPartialRecords(t *testing.T) {
	backend := headless.New()
	b := NewBuffer(backend, point2Schema(t))
	assert.ErrorIs(t, b.PushVertexBytes(make([]byte, 12)), core.ErrStrideMismatch)
	assert.ErrorIs(t, b.PushInstanceBytes(make([]byte, 8)), core.ErrEmptySchema)

	empty := NewBuffer(backend, nil)
	assert.ErrorIs(t, empty.PushVertexBytes(make([]byte, 8)), core.ErrEmptySchema)
	assert.ErrorIs(t, empty.UploadVertices(), core.ErrEmptySchema)

	m := WrapMesh[point3, NoInstance](b)
	assert.ErrorIs(t, m.PushVertex(point3{}), core.ErrStrideMismatch)
	assert.False(t, b.HasStagedData())
}

func TestCleanKeepsGPUState(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, m.PushVertices(points(4)...))
	require.NoError(t, m.PushIndices(0, 1, 2, 2, 3, 0))
	require.NoError(t, m.Upload())

	vertices, indices := m.UploadedVertexCount(), m.UploadedIndexCount()
	vbo := m.VertexBufferID()
	m.Clean()

	assert.False(t, m.HasStagedData())
	assert.Equal(t, uint32(0), m.StagedVertexCount())
	assert.Equal(t, vertices, m.UploadedVertexCount())
	assert.Equal(t, indices, m.UploadedIndexCount())
	assert.Equal(t, vbo, m.VertexBufferID())
	assert.True(t, backend.IsBuffer(vbo))
}

func TestRemoveReleasesEverything(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, cell](backend, instancedSchema(t))
	require.NoError(t, m.PushVertices(points(3)...))
	require.NoError(t, m.PushInstances(cell{1, 2}, cell{3, 4}))
	require.NoError(t, m.PushIndices(0, 1, 2))
	require.NoError(t, m.Upload())
	require.Equal(t, 3, backend.Live(metadata.ObjectKindBuffer))

	m.Remove()

	assert.Equal(t, uint32(0), m.UploadedVertexCount())
	assert.Equal(t, uint32(0), m.UploadedIndexCount())
	assert.Equal(t, uint32(0), m.UploadedInstanceCount())
	flags := m.Flags()
	assert.False(t, flags.VertexArrayCreated)
	assert.False(t, flags.VertexBufferCreated)
	assert.False(t, flags.IndexBufferCreated)
	assert.False(t, flags.InstanceBufferCreated)
	assert.False(t, flags.FeedbackInitialized)
	assert.Equal(t, 0, backend.Live(metadata.ObjectKindBuffer))
	assert.Equal(t, 0, backend.Live(metadata.ObjectKindVertexArray))

	// still usable
	require.NoError(t, m.PushVertices(points(2)...))
	require.NoError(t, m.UploadVertices())
	assert.Equal(t, uint32(2), m.UploadedVertexCount())
	assert.Empty(t, backend.Errors())
}

func TestCloneDoesNotAlias(t *testing.T) {
	backend := headless.New()
	original := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, original.PushVertices(points(4)...))
	require.NoError(t, original.UploadVertices())
	vbo := original.VertexBufferID()
	before := backend.BufferContents(vbo)

	clone := original.Clone()
	assert.NotEqual(t, original.VertexArrayID(), clone.VertexArrayID())
	assert.False(t, clone.Flags().VertexBufferCreated)
	assert.Equal(t, uint32(0), clone.UploadedVertexCount())
	assert.Equal(t, uint32(4), clone.StagedVertexCount())

	require.NoError(t, clone.PushVertex(point2{X: 99, Y: 99}))
	require.NoError(t, clone.UploadVertices())

	assert.NotEqual(t, vbo, clone.VertexBufferID())
	assert.Equal(t, vbo, original.VertexBufferID())
	assert.Equal(t, before, backend.BufferContents(vbo))
	assert.Equal(t, uint32(4), original.StagedVertexCount())
	assert.Equal(t, uint32(5), clone.UploadedVertexCount())
}

func TestMoveTransfersOwnership(t *testing.T) {
	backend := headless.New()
	src := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, src.PushVertices(points(4)...))
	require.NoError(t, src.UploadVertices())
	vao, vbo := src.VertexArrayID(), src.VertexBufferID()

	dst := src.Move()
	assert.Equal(t, vao, dst.VertexArrayID())
	assert.Equal(t, vbo, dst.VertexBufferID())
	assert.Equal(t, uint32(4), dst.UploadedVertexCount())

	assert.Equal(t, uint32(0), src.VertexArrayID())
	assert.Equal(t, uint32(0), src.UploadedVertexCount())
	assert.Equal(t, Flags{}, src.Flags())

	// removing the moved-from buffer must not touch the new owner's objects
	src.Remove()
	assert.True(t, backend.IsBuffer(vbo))
	assert.True(t, backend.IsVertexArray(vao))
	assert.Empty(t, backend.Errors())
}

func TestUpdateVertexRangeLeavesOtherVertices(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, m.PushVertices(points(10)...))
	require.NoError(t, m.UploadVertices())
	require.Equal(t, uint32(10), m.UploadedVertexCount())
	before := backend.BufferContents(m.VertexBufferID())

	replacement := []point2{{-1, -1}, {-2, -2}, {-3, -3}}
	require.NoError(t, m.UpdateVertexRange(2, 5, replacement))

	after := backend.BufferContents(m.VertexBufferID())
	assert.Equal(t, before[:2*8], after[:2*8])
	assert.Equal(t, before[5*8:], after[5*8:])

	read, err := m.ReadVertices(0, 10)
	require.NoError(t, err)
	assert.Equal(t, replacement, read[2:5])
	assert.Equal(t, points(10)[:2], read[:2])

	// staging is untouched
	staged, err := m.Vertices()
	require.NoError(t, err)
	assert.Equal(t, points(10), staged)
}

func TestUpdateVertexRangeErrors(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, m.PushVertices(points(4)...))

	assert.ErrorIs(t, m.UpdateVertexRange(0, 1, points(1)), core.ErrNotUploaded)
	require.NoError(t, m.UploadVertices())

	assert.NoError(t, m.UpdateVertexRange(2, 2, nil))
	assert.NoError(t, m.UpdateVertexRange(3, 1, nil))
	assert.ErrorIs(t, m.UpdateVertexRange(3, 5, points(2)), core.ErrOutOfRange)
	assert.ErrorIs(t, m.Buffer.UpdateVertexRange(0, 2, make([]byte, 8)), core.ErrStrideMismatch)
	assert.Empty(t, backend.Errors())
}

func TestUpdateAllVertexData(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, m.PushVertices(points(3)...))
	assert.ErrorIs(t, m.UpdateAllVertexData(), core.ErrNotUploaded)
	require.NoError(t, m.UploadVertices())

	m.Clean()
	require.NoError(t, m.PushVertices(point2{5, 5}, point2{6, 6}, point2{7, 7}))
	require.NoError(t, m.UpdateAllVertexData())
	read, err := m.ReadVertices(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []point2{{5, 5}, {6, 6}, {7, 7}}, read)

	require.NoError(t, m.PushVertex(point2{}))
	assert.Panics(t, func() { _ = m.UpdateAllVertexData() })
}

func TestInstances(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, cell](backend, instancedSchema(t))
	require.NoError(t, m.PushVertices(points(3)...))
	require.NoError(t, m.PushInstances(cell{0, 0}, cell{1, 0}))
	assert.ErrorIs(t, m.SetInstance(2, cell{}), core.ErrOutOfRange)
	require.NoError(t, m.SetInstance(1, cell{7, 8}))

	insts, err := m.Instances()
	require.NoError(t, err)
	assert.Equal(t, []cell{{0, 0}, {7, 8}}, insts)

	assert.ErrorIs(t, m.UpdateAllInstanceData(), core.ErrNotUploaded)
	require.NoError(t, m.Upload())
	assert.Equal(t, uint32(2), m.UploadedInstanceCount())
	assert.True(t, m.Flags().InstanceBufferCreated)

	attrib, ok := backend.Attrib(m.VertexArrayID(), 1)
	require.True(t, ok)
	assert.True(t, attrib.Integer)
	assert.Equal(t, uint32(1), attrib.Divisor)
	assert.Equal(t, int32(8), attrib.Stride)
	vertexAttrib, ok := backend.Attrib(m.VertexArrayID(), 0)
	require.True(t, ok)
	assert.Equal(t, uint32(0), vertexAttrib.Divisor)
	assert.NotEqual(t, attrib.Buffer, vertexAttrib.Buffer)

	require.NoError(t, m.UpdateInstanceRange(0, 1, []cell{{5, 5}}))
	require.NoError(t, m.SetInstance(1, cell{9, 9}))
	require.NoError(t, m.UpdateAllInstanceData())

	assert.ErrorIs(t, m.UpdateInstanceRange(1, 3, []cell{{}, {}}), core.ErrOutOfRange)
	assert.Empty(t, backend.Errors())
}

func TestUbyteInstances(t *testing.T) {
	backend := headless.New()
	s := point2Schema(t)
	require.NoError(t, s.AddFloat(2, true))
	require.NoError(t, s.AddUbyte(4, true))
	require.Equal(t, uint32(24), s.InstanceStride())

	unpadded := NewMesh[point2, cell](backend, s)
	assert.ErrorIs(t, unpadded.PushInstance(cell{}), core.ErrStrideMismatch)

	m := NewMesh[point2, tinted](backend, s)
	require.NoError(t, m.PushVertices(points(3)...))
	require.NoError(t, m.PushInstances(
		tinted{Offset: [2]float32{1, 2}, Colour: [4]uint8{10, 20, 30, 255}},
		tinted{Offset: [2]float32{3, 4}, Colour: [4]uint8{40, 50, 60, 128}},
	))
	require.NoError(t, m.Upload())
	assert.Equal(t, uint32(2), m.UploadedInstanceCount())

	tint, ok := backend.Attrib(m.VertexArrayID(), 2)
	require.True(t, ok)
	assert.True(t, tint.Integer)
	assert.Equal(t, metadata.ScalarTypeUByte, tint.Scalar)
	assert.Equal(t, int32(4), tint.Size)
	assert.Equal(t, int32(24), tint.Stride)
	assert.Equal(t, uintptr(8), tint.Offset)

	data := backend.BufferContents(tint.Buffer)
	require.Len(t, data, 48)
	assert.Equal(t, []byte{10, 20, 30, 255}, data[8:12])
	assert.Equal(t, make([]byte, 12), data[12:24])
	assert.Equal(t, []byte{40, 50, 60, 128}, data[32:36])

	insts, err := m.Instances()
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{40, 50, 60, 128}, insts[1].Colour)
	assert.Empty(t, backend.Errors())
}

func TestUploadInstancesWithoutInstancedAttributes(t *testing.T) {
	backend := headless.New()
	b := NewBuffer(backend, point2Schema(t), WithoutVertexArray())
	require.NoError(t, b.UploadInstances())
	assert.True(t, b.Flags().VertexArrayCreated)
	assert.False(t, b.Flags().InstanceBufferCreated)
}

func TestUploadIndices(t *testing.T) {
	backend := headless.New()
	m := NewMesh[point2, NoInstance](backend, point2Schema(t))
	require.NoError(t, m.UploadIndices())
	assert.False(t, m.Flags().IndexBufferCreated)

	require.NoError(t, m.PushVertices(points(4)...))
	require.NoError(t, m.PushIndices(0, 1, 2, 2, 3, 0))
	require.NoError(t, m.UploadVertices())
	require.NoError(t, m.UploadIndices())

	assert.Equal(t, uint32(6), m.UploadedIndexCount())
	ibo := backend.ElementBuffer(m.VertexArrayID())
	require.NotZero(t, ibo)
	data := backend.BufferContents(ibo)
	require.Len(t, data, 24)
	assert.Equal(t, uint32(3), binary.NativeEndian.Uint32(data[16:]))
}

func TestSetUsage(t *testing.T) {
	b := NewBuffer(headless.New(), point2Schema(t))
	assert.ErrorIs(t, b.SetUsage(metadata.BufferUsage(9)), core.ErrInvalidArgument)
	require.NoError(t, b.SetUsage(metadata.BufferUsageStreamDraw))
	assert.Equal(t, metadata.BufferUsageStreamDraw, b.Usage())
}

func TestReserve(t *testing.T) {
	b := NewBuffer(headless.New(), point2Schema(t))
	b.Reserve(100)
	assert.GreaterOrEqual(t, cap(b.StagedVertexBytes()), 800)
	assert.False(t, b.HasStagedData())
}
