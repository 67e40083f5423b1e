package geometry

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

/**
 * @brief Which native objects of a geometry buffer exist. Created does not mean
 * the object holds data.
 */
type Flags struct {
	VertexArrayCreated    bool
	VertexBufferCreated   bool
	IndexBufferCreated    bool
	UsesInstancing        bool
	InstanceBufferCreated bool
	Feedback              bool
	FeedbackInitialized   bool
}

type bufferOptions struct {
	deferVertexArray bool
	feedback         bool
	usage            metadata.BufferUsage
	name             string
}

type BufferOption func(*bufferOptions)

// WithoutVertexArray defers creation of the vertex array until the first upload.
func WithoutVertexArray() BufferOption {
	return func(o *bufferOptions) {
		o.deferVertexArray = true
	}
}

// AsFeedback makes the buffer a capture target for pipeline output. It never accepts
// vertices or indices from the host.
func AsFeedback() BufferOption {
	return func(o *bufferOptions) {
		o.feedback = true
	}
}

func WithUsage(usage metadata.BufferUsage) BufferOption {
	return func(o *bufferOptions) {
		o.usage = usage
	}
}

func WithName(name string) BufferOption {
	return func(o *bufferOptions) {
		o.name = name
	}
}

// Buffer owns the host staging data of one drawable object and the native objects it is
// uploaded to. Host data is raw bytes laid out according to the schema; see Mesh for a
// typed view.
//
// Every method that touches the backend must run on the thread owning the graphics
// context. A Buffer is not safe for concurrent use.
type Buffer struct {
	backend renderer.RendererBackend
	name    string
	schema  *Schema
	usage   metadata.BufferUsage

	vertices  []byte
	instances []byte
	indices   []uint32

	vertexArray    Handle
	vertexBuffer   Handle
	indexBuffer    Handle
	instanceBuffer Handle

	// counts of what the native buffers hold, independent of staging
	uploadedVertexCount   uint32
	uploadedIndexCount    uint32
	uploadedInstanceCount uint32

	feedback bool
	capture  capture
}

// NewBuffer creates a geometry buffer laid out by schema. A nil schema starts empty.
// Unless WithoutVertexArray is given, the vertex array is created right away.
func NewBuffer(backend renderer.RendererBackend, schema *Schema, opts ...BufferOption) *Buffer {
	o := &bufferOptions{usage: metadata.BufferUsageStaticDraw}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = fmt.Sprintf("geometry-%s", uuid.NewString())
	}
	if schema == nil {
		schema = NewSchema()
	}

	b := &Buffer{
		backend:  backend,
		name:     o.name,
		schema:   schema,
		usage:    o.usage,
		feedback: o.feedback,
	}
	if !o.deferVertexArray {
		b.ensureVertexArray()
	}
	return b
}

func (b *Buffer) Name() string {
	return b.name
}

func (b *Buffer) Schema() *Schema {
	return b.schema
}

func (b *Buffer) Usage() metadata.BufferUsage {
	return b.usage
}

// SetUsage changes the upload hint used by subsequent uploads.
func (b *Buffer) SetUsage(usage metadata.BufferUsage) error {
	if !usage.Valid() {
		err := fmt.Errorf("func SetUsage - %s: %w", usage, core.ErrInvalidArgument)
		core.LogError("%s", err)
		return err
	}
	b.usage = usage
	return nil
}

func (b *Buffer) Flags() Flags {
	return Flags{
		VertexArrayCreated:    b.vertexArray.Valid(),
		VertexBufferCreated:   b.vertexBuffer.Valid(),
		IndexBufferCreated:    b.indexBuffer.Valid(),
		UsesInstancing:        b.schema.UsesInstancing(),
		InstanceBufferCreated: b.instanceBuffer.Valid(),
		Feedback:              b.feedback,
		FeedbackInitialized:   b.capture.state != FeedbackDeclared,
	}
}

func (b *Buffer) IsFeedback() bool {
	return b.feedback
}

// VertexArrayID is the native vertex array, 0 when not created.
func (b *Buffer) VertexArrayID() uint32 {
	return b.vertexArray.ID()
}

func (b *Buffer) VertexBufferID() uint32 {
	return b.vertexBuffer.ID()
}

func (b *Buffer) HasStagedData() bool {
	return len(b.vertices) > 0
}

func (b *Buffer) StagedVertexCount() uint32 {
	if b.schema.VertexStride() == 0 {
		return 0
	}
	return uint32(len(b.vertices)) / b.schema.VertexStride()
}

func (b *Buffer) StagedIndexCount() uint32 {
	return uint32(len(b.indices))
}

// InstanceCount is the number of staged instances.
func (b *Buffer) InstanceCount() uint32 {
	if b.schema.InstanceStride() == 0 {
		return 0
	}
	return uint32(len(b.instances)) / b.schema.InstanceStride()
}

func (b *Buffer) UploadedVertexCount() uint32 {
	return b.uploadedVertexCount
}

func (b *Buffer) UploadedIndexCount() uint32 {
	return b.uploadedIndexCount
}

func (b *Buffer) UploadedInstanceCount() uint32 {
	return b.uploadedInstanceCount
}

// StagedVertexBytes returns the staged vertex bytes. The slice aliases the staging storage.
func (b *Buffer) StagedVertexBytes() []byte {
	return b.vertices
}

func (b *Buffer) StagedInstanceBytes() []byte {
	return b.instances
}

func (b *Buffer) StagedIndices() []uint32 {
	return b.indices
}

// Reserve grows the vertex staging capacity to hold n vertices.
func (b *Buffer) Reserve(n int) {
	need := n * int(b.schema.VertexStride())
	if need <= cap(b.vertices) {
		return
	}
	grown := make([]byte, len(b.vertices), need)
	copy(grown, b.vertices)
	b.vertices = grown
}

func (b *Buffer) usageError(fn string, err error) error {
	err = fmt.Errorf("func %s - %s: %w", fn, b.name, err)
	core.LogError("%s", err)
	return err
}

// PushVertexBytes appends whole vertex records to staging.
func (b *Buffer) PushVertexBytes(data []byte) error {
	if b.feedback {
		return b.usageError("PushVertexBytes", core.ErrFeedbackBuffer)
	}
	stride := b.schema.VertexStride()
	if stride == 0 {
		return b.usageError("PushVertexBytes", core.ErrEmptySchema)
	}
	if uint32(len(data))%stride != 0 {
		return b.usageError("PushVertexBytes", core.ErrStrideMismatch)
	}
	b.vertices = append(b.vertices, data...)
	return nil
}

// PushInstanceBytes appends whole instance records to staging.
func (b *Buffer) PushInstanceBytes(data []byte) error {
	stride := b.schema.InstanceStride()
	if stride == 0 {
		return b.usageError("PushInstanceBytes", core.ErrEmptySchema)
	}
	if uint32(len(data))%stride != 0 {
		return b.usageError("PushInstanceBytes", core.ErrStrideMismatch)
	}
	b.instances = append(b.instances, data...)
	return nil
}

// SetInstanceBytes overwrites the staged instance at index.
func (b *Buffer) SetInstanceBytes(index uint32, data []byte) error {
	if index >= b.InstanceCount() {
		return b.usageError("SetInstanceBytes", core.ErrOutOfRange)
	}
	stride := b.schema.InstanceStride()
	if uint32(len(data)) != stride {
		return b.usageError("SetInstanceBytes", core.ErrStrideMismatch)
	}
	copy(b.instances[index*stride:], data)
	return nil
}

func (b *Buffer) PushIndices(indices ...uint32) error {
	if b.feedback {
		return b.usageError("PushIndices", core.ErrFeedbackBuffer)
	}
	b.indices = append(b.indices, indices...)
	return nil
}

func (b *Buffer) ensureVertexArray() {
	if b.vertexArray.Valid() {
		return
	}
	b.vertexArray = newHandle(b.backend, metadata.ObjectKindVertexArray)
}

func ensureBuffer(backend renderer.RendererBackend, h *Handle) {
	if h.Valid() {
		return
	}
	*h = newHandle(backend, metadata.ObjectKindBuffer)
}

// bindAttributes points every attribute of one kind at the array buffer currently bound.
func (b *Buffer) bindAttributes(perInstance bool) {
	for _, binding := range b.schema.Bindings(perInstance) {
		if binding.Scalar.Integer() {
			b.backend.VertexAttribIPointer(binding.Slot, binding.Size, binding.Scalar, binding.Stride, binding.Offset)
		} else {
			b.backend.VertexAttribPointer(binding.Slot, binding.Size, binding.Scalar, binding.Stride, binding.Offset)
		}
		b.backend.EnableVertexAttribArray(binding.Slot)
		if perInstance {
			b.backend.VertexAttribDivisor(binding.Slot, binding.Divisor)
		}
	}
}

// UploadVertices (re)specifies the vertex buffer with the whole staging array and binds
// the vertex attributes. Both uploaded counts are recomputed from staging.
func (b *Buffer) UploadVertices() error {
	if b.feedback {
		return b.usageError("UploadVertices", core.ErrFeedbackBuffer)
	}
	stride := b.schema.VertexStride()
	if stride == 0 {
		return b.usageError("UploadVertices", core.ErrEmptySchema)
	}

	b.ensureVertexArray()
	b.backend.BindVertexArray(b.vertexArray.ID())
	ensureBuffer(b.backend, &b.vertexBuffer)

	b.backend.BindBuffer(metadata.BufferTargetArray, b.vertexBuffer.ID())
	b.backend.BufferData(metadata.BufferTargetArray, len(b.vertices), b.vertices, b.usage)
	b.bindAttributes(false)
	b.backend.BindVertexArray(0)

	b.schema.Freeze()
	b.uploadedVertexCount = uint32(len(b.vertices)) / stride
	b.uploadedIndexCount = uint32(len(b.indices))
	return nil
}

// UploadInstances (re)specifies the instance buffer. Without per-instance attributes it
// does nothing.
func (b *Buffer) UploadInstances() error {
	b.ensureVertexArray()
	if !b.schema.UsesInstancing() {
		core.LogDebug("%s has no per-instance attributes, skipping instance upload", b.name)
		return nil
	}
	b.backend.BindVertexArray(b.vertexArray.ID())
	ensureBuffer(b.backend, &b.instanceBuffer)
	b.uploadInstances()
	b.backend.BindVertexArray(0)
	return nil
}

// uploadInstances expects the vertex array to be bound.
func (b *Buffer) uploadInstances() {
	b.backend.BindBuffer(metadata.BufferTargetArray, b.instanceBuffer.ID())
	b.backend.BufferData(metadata.BufferTargetArray, len(b.instances), b.instances, b.usage)
	b.bindAttributes(true)

	b.schema.Freeze()
	b.uploadedInstanceCount = uint32(len(b.instances)) / b.schema.InstanceStride()
}

// UploadIndices (re)specifies the index buffer. Does nothing when no indices are staged.
func (b *Buffer) UploadIndices() error {
	if b.feedback {
		return b.usageError("UploadIndices", core.ErrFeedbackBuffer)
	}
	b.ensureVertexArray()
	if len(b.indices) == 0 {
		return nil
	}

	b.backend.BindVertexArray(b.vertexArray.ID())
	ensureBuffer(b.backend, &b.indexBuffer)

	data := make([]byte, 0, len(b.indices)*4)
	for _, idx := range b.indices {
		data = binary.NativeEndian.AppendUint32(data, idx)
	}
	b.backend.BindBuffer(metadata.BufferTargetElementArray, b.indexBuffer.ID())
	b.backend.BufferData(metadata.BufferTargetElementArray, len(data), data, b.usage)
	b.backend.BindVertexArray(0)

	b.uploadedIndexCount = uint32(len(b.indices))
	return nil
}

// Upload pushes staged vertices, instances and indices.
func (b *Buffer) Upload() error {
	if err := b.UploadVertices(); err != nil {
		return err
	}
	if err := b.UploadInstances(); err != nil {
		return err
	}
	return b.UploadIndices()
}

// UpdateAllVertexData rewrites the vertex buffer in place with the staging array. The
// vertex count must not have changed since the last upload.
func (b *Buffer) UpdateAllVertexData() error {
	if b.feedback {
		return b.usageError("UpdateAllVertexData", core.ErrFeedbackBuffer)
	}
	if !b.vertexBuffer.Valid() {
		return b.usageError("UpdateAllVertexData", core.ErrNotUploaded)
	}
	staged := b.StagedVertexCount()
	core.Assert(staged == b.uploadedVertexCount,
		"%s: in-place update of %d vertices into a buffer of %d", b.name, staged, b.uploadedVertexCount)

	b.backend.BindVertexArray(b.vertexArray.ID())
	b.backend.BindBuffer(metadata.BufferTargetArray, b.vertexBuffer.ID())
	b.backend.BufferSubData(metadata.BufferTargetArray, 0, b.vertices)
	b.backend.BindVertexArray(0)
	return nil
}

// UpdateVertexRange replaces vertices [start, end) of the vertex buffer with data. Staging
// is left untouched. end <= start does nothing.
func (b *Buffer) UpdateVertexRange(start, end uint32, data []byte) error {
	if b.feedback {
		return b.usageError("UpdateVertexRange", core.ErrFeedbackBuffer)
	}
	if !b.vertexBuffer.Valid() {
		return b.usageError("UpdateVertexRange", core.ErrNotUploaded)
	}
	return b.updateRange("UpdateVertexRange", &b.vertexBuffer, b.schema.VertexStride(), b.uploadedVertexCount, start, end, data)
}

// UpdateAllInstanceData rewrites the instance buffer in place with the staging array.
func (b *Buffer) UpdateAllInstanceData() error {
	if !b.instanceBuffer.Valid() || !b.schema.UsesInstancing() {
		return b.usageError("UpdateAllInstanceData", core.ErrNotUploaded)
	}
	staged := b.InstanceCount()
	core.Assert(staged == b.uploadedInstanceCount,
		"%s: in-place update of %d instances into a buffer of %d", b.name, staged, b.uploadedInstanceCount)

	b.backend.BindVertexArray(b.vertexArray.ID())
	b.backend.BindBuffer(metadata.BufferTargetArray, b.instanceBuffer.ID())
	b.backend.BufferSubData(metadata.BufferTargetArray, 0, b.instances)
	b.backend.BindVertexArray(0)
	return nil
}

// UpdateInstanceRange replaces instances [start, end) of the instance buffer with data.
func (b *Buffer) UpdateInstanceRange(start, end uint32, data []byte) error {
	if !b.instanceBuffer.Valid() || !b.schema.UsesInstancing() {
		return b.usageError("UpdateInstanceRange", core.ErrNotUploaded)
	}
	return b.updateRange("UpdateInstanceRange", &b.instanceBuffer, b.schema.InstanceStride(), b.uploadedInstanceCount, start, end, data)
}

func (b *Buffer) updateRange(fn string, h *Handle, stride, count, start, end uint32, data []byte) error {
	if end <= start {
		return nil
	}
	if end > count {
		return b.usageError(fn, core.ErrOutOfRange)
	}
	if uint32(len(data)) != (end-start)*stride {
		return b.usageError(fn, core.ErrStrideMismatch)
	}
	b.backend.BindVertexArray(b.vertexArray.ID())
	b.backend.BindBuffer(metadata.BufferTargetArray, h.ID())
	b.backend.BufferSubData(metadata.BufferTargetArray, int(start*stride), data)
	b.backend.BindVertexArray(0)
	return nil
}

// gpuVertexCount is the number of vertices the vertex buffer holds valid data for.
func (b *Buffer) gpuVertexCount() uint32 {
	if b.feedback {
		return min(b.CapturedVertexCount(), b.capture.maxVertices)
	}
	return b.uploadedVertexCount
}

// ReadVertexBytes reads vertices [start, end) back from the vertex buffer. This stalls
// until the graphics pipeline has written them.
func (b *Buffer) ReadVertexBytes(start, end uint32) ([]byte, error) {
	if !b.vertexBuffer.Valid() {
		return nil, b.usageError("ReadVertexBytes", core.ErrNotUploaded)
	}
	if end < start || end > b.gpuVertexCount() {
		return nil, b.usageError("ReadVertexBytes", core.ErrOutOfRange)
	}
	stride := b.schema.VertexStride()
	out := make([]byte, (end-start)*stride)
	if len(out) == 0 {
		return out, nil
	}
	b.backend.BindBuffer(metadata.BufferTargetArray, b.vertexBuffer.ID())
	b.backend.GetBufferSubData(metadata.BufferTargetArray, int(start*stride), out)
	b.backend.BindBuffer(metadata.BufferTargetArray, 0)
	return out, nil
}

// Clean drops the host staging data. Native buffers and uploaded counts are kept.
func (b *Buffer) Clean() {
	b.vertices = nil
	b.instances = nil
	b.indices = nil
}

// ResetGPUCounts zeroes the uploaded counts without touching native objects.
func (b *Buffer) ResetGPUCounts() {
	b.uploadedVertexCount = 0
	b.uploadedIndexCount = 0
	b.uploadedInstanceCount = 0
}

// Remove drops staging and deletes every native object. The buffer keeps its schema and
// can be uploaded again afterwards.
func (b *Buffer) Remove() {
	b.Clean()
	if b.capture.state == FeedbackCapturing {
		core.LogWarn("%s removed while capturing, ending capture", b.name)
		b.backend.EndQuery(metadata.QueryTargetPrimitivesWritten)
		b.backend.EndTransformFeedback()
	}
	b.capture.query.Release(b.backend)
	b.vertexBuffer.Release(b.backend)
	b.instanceBuffer.Release(b.backend)
	b.indexBuffer.Release(b.backend)
	b.vertexArray.Release(b.backend)
	b.ResetGPUCounts()
	b.capture = capture{}
	b.schema.unfreeze()
}

// Clone copies staging data, schema and settings into a new buffer with its own native
// objects. Nothing is uploaded for the clone.
func (b *Buffer) Clone() *Buffer {
	core.LogGen("cloning %s (vertex array %d)", b.name, b.vertexArray.ID())
	c := &Buffer{
		backend:   b.backend,
		name:      fmt.Sprintf("geometry-%s", uuid.NewString()),
		schema:    b.schema.Clone(),
		usage:     b.usage,
		vertices:  append([]byte(nil), b.vertices...),
		instances: append([]byte(nil), b.instances...),
		indices:   append([]uint32(nil), b.indices...),
		feedback:  b.feedback,
	}
	c.ensureVertexArray()
	return c
}

// Move transfers everything b owns to a new buffer. b is left empty, as if removed, with
// an empty schema.
func (b *Buffer) Move() *Buffer {
	core.LogGen("moving %s (vertex array %d)", b.name, b.vertexArray.ID())
	m := &Buffer{
		backend:               b.backend,
		name:                  b.name,
		schema:                b.schema,
		usage:                 b.usage,
		vertices:              b.vertices,
		instances:             b.instances,
		indices:               b.indices,
		vertexArray:           b.vertexArray.take(),
		vertexBuffer:          b.vertexBuffer.take(),
		indexBuffer:           b.indexBuffer.take(),
		instanceBuffer:        b.instanceBuffer.take(),
		uploadedVertexCount:   b.uploadedVertexCount,
		uploadedIndexCount:    b.uploadedIndexCount,
		uploadedInstanceCount: b.uploadedInstanceCount,
		feedback:              b.feedback,
		capture:               b.capture,
	}
	m.capture.query = b.capture.query.take()

	b.schema = NewSchema()
	b.vertices, b.instances, b.indices = nil, nil, nil
	b.ResetGPUCounts()
	b.capture = capture{}
	return m
}
