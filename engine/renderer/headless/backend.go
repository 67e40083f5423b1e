package headless

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

var _ renderer.RendererBackend = (*Backend)(nil)

// AttribState is the recorded layout of one vertex array attribute slot.
type AttribState struct {
	Enabled bool
	Integer bool
	Size    int32
	Scalar  metadata.ScalarType
	Stride  int32
	Offset  uintptr
	Divisor uint32
	// Buffer is the array buffer bound when the pointer was specified.
	Buffer uint32
}

// DrawRecord describes one issued draw call.
type DrawRecord struct {
	Call        string
	Mode        metadata.PrimitiveTopology
	First       int32
	Count       int32
	Instances   int32
	VertexArray uint32
	Program     uint32
	Textures    map[uint32]metadata.TextureBinding
	Blend       metadata.BlendMode
}

type bufferObject struct {
	data  []byte
	usage metadata.BufferUsage
}

type vertexArrayObject struct {
	attribs       map[uint32]*AttribState
	elementBuffer uint32
}

type queryObject struct {
	target metadata.QueryTarget
	result uint32
}

type feedbackState struct {
	active     bool
	kind       metadata.PrimitiveTopology
	primitives uint32
}

// Backend is an in-memory graphics context. It keeps real buffer contents and layout
// state so callers can be verified without a GPU, and records every misuse the driver
// would report as an error.
type Backend struct {
	bufferNames      namePool
	vertexArrayNames namePool
	queryNames       namePool

	buffers      map[uint32]*bufferObject
	vertexArrays map[uint32]*vertexArrayObject
	queries      map[uint32]*queryObject

	arrayBuffer       uint32
	feedbackBuffer    uint32
	feedbackBindings  map[uint32]uint32
	boundVertexArray  uint32
	activeQueries     map[metadata.QueryTarget]uint32
	feedback          feedbackState
	activeTextureUnit uint32
	textures          map[uint32]metadata.TextureBinding
	blend             metadata.BlendMode
	program           uint32

	framebuffer uint32
	drawBuffers []uint32
	viewport    metadata.Viewport
	clearColour mgl32.Vec4
	clears      int

	draws  []DrawRecord
	errors []error

	nextProgram uint32
	programs    map[uint32]*Program
}

func New() *Backend {
	return &Backend{
		buffers:          make(map[uint32]*bufferObject),
		vertexArrays:     make(map[uint32]*vertexArrayObject),
		queries:          make(map[uint32]*queryObject),
		feedbackBindings: make(map[uint32]uint32),
		activeQueries:    make(map[metadata.QueryTarget]uint32),
		textures:         make(map[uint32]metadata.TextureBinding),
		blend:            metadata.BlendNone,
		programs:         make(map[uint32]*Program),
	}
}

func (b *Backend) Name() string {
	return "headless"
}

func (b *Backend) fail(call string, format string, args ...interface{}) {
	err := fmt.Errorf("%s: %s", call, fmt.Sprintf(format, args...))
	core.LogError("headless backend: %s", err)
	b.errors = append(b.errors, err)
}

func (b *Backend) GenBuffer() uint32 {
	id := b.bufferNames.acquire()
	b.buffers[id] = &bufferObject{}
	return id
}

func (b *Backend) DeleteBuffer(id uint32) {
	if id == 0 {
		return
	}
	if err := b.bufferNames.release(id); err != nil {
		b.fail("DeleteBuffer", "%s", err)
		return
	}
	delete(b.buffers, id)
	// deleting a bound object unbinds it
	if b.arrayBuffer == id {
		b.arrayBuffer = 0
	}
	if b.feedbackBuffer == id {
		b.feedbackBuffer = 0
	}
	for idx, bound := range b.feedbackBindings {
		if bound == id {
			delete(b.feedbackBindings, idx)
		}
	}
	for _, vao := range b.vertexArrays {
		if vao.elementBuffer == id {
			vao.elementBuffer = 0
		}
	}
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, id uint32) {
	if id != 0 {
		if _, ok := b.buffers[id]; !ok {
			b.fail("BindBuffer", "unknown buffer %d", id)
			return
		}
	}
	switch target {
	case metadata.BufferTargetArray:
		b.arrayBuffer = id
	case metadata.BufferTargetElementArray:
		// element array binding is vertex array state
		vao, ok := b.vertexArrays[b.boundVertexArray]
		if !ok {
			b.fail("BindBuffer", "element array buffer bound with no vertex array")
			return
		}
		vao.elementBuffer = id
	case metadata.BufferTargetTransformFeedback:
		b.feedbackBuffer = id
	default:
		b.fail("BindBuffer", "invalid target %s", target)
	}
}

func (b *Backend) boundBuffer(call string, target metadata.BufferTarget) *bufferObject {
	var id uint32
	switch target {
	case metadata.BufferTargetArray:
		id = b.arrayBuffer
	case metadata.BufferTargetElementArray:
		if vao, ok := b.vertexArrays[b.boundVertexArray]; ok {
			id = vao.elementBuffer
		}
	case metadata.BufferTargetTransformFeedback:
		id = b.feedbackBuffer
	}
	if id == 0 {
		b.fail(call, "no buffer bound to %s", target)
		return nil
	}
	return b.buffers[id]
}

func (b *Backend) BufferData(target metadata.BufferTarget, size int, data []byte, usage metadata.BufferUsage) {
	buf := b.boundBuffer("BufferData", target)
	if buf == nil {
		return
	}
	if size < 0 || (data != nil && len(data) < size) {
		b.fail("BufferData", "invalid size %d", size)
		return
	}
	buf.data = make([]byte, size)
	if data != nil {
		copy(buf.data, data[:size])
	}
	buf.usage = usage
}

func (b *Backend) BufferSubData(target metadata.BufferTarget, offset int, data []byte) {
	buf := b.boundBuffer("BufferSubData", target)
	if buf == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(buf.data) {
		b.fail("BufferSubData", "range [%d, %d) outside buffer of %d bytes", offset, offset+len(data), len(buf.data))
		return
	}
	copy(buf.data[offset:], data)
}

func (b *Backend) GetBufferSubData(target metadata.BufferTarget, offset int, out []byte) {
	buf := b.boundBuffer("GetBufferSubData", target)
	if buf == nil {
		return
	}
	if offset < 0 || offset+len(out) > len(buf.data) {
		b.fail("GetBufferSubData", "range [%d, %d) outside buffer of %d bytes", offset, offset+len(out), len(buf.data))
		return
	}
	copy(out, buf.data[offset:])
}

func (b *Backend) BindBufferBase(target metadata.BufferTarget, index uint32, id uint32) {
	if target != metadata.BufferTargetTransformFeedback {
		b.fail("BindBufferBase", "unsupported indexed target %s", target)
		return
	}
	if _, ok := b.buffers[id]; id != 0 && !ok {
		b.fail("BindBufferBase", "unknown buffer %d", id)
		return
	}
	b.feedbackBindings[index] = id
	b.feedbackBuffer = id
}

func (b *Backend) GenVertexArray() uint32 {
	id := b.vertexArrayNames.acquire()
	b.vertexArrays[id] = &vertexArrayObject{attribs: make(map[uint32]*AttribState)}
	return id
}

func (b *Backend) DeleteVertexArray(id uint32) {
	if id == 0 {
		return
	}
	if err := b.vertexArrayNames.release(id); err != nil {
		b.fail("DeleteVertexArray", "%s", err)
		return
	}
	delete(b.vertexArrays, id)
	if b.boundVertexArray == id {
		b.boundVertexArray = 0
	}
}

func (b *Backend) BindVertexArray(id uint32) {
	if _, ok := b.vertexArrays[id]; id != 0 && !ok {
		b.fail("BindVertexArray", "unknown vertex array %d", id)
		return
	}
	b.boundVertexArray = id
}

func (b *Backend) attrib(call string, slot uint32) *AttribState {
	vao, ok := b.vertexArrays[b.boundVertexArray]
	if !ok {
		b.fail(call, "no vertex array bound")
		return nil
	}
	st, ok := vao.attribs[slot]
	if !ok {
		st = &AttribState{}
		vao.attribs[slot] = st
	}
	return st
}

func (b *Backend) attribPointer(call string, slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr, integer bool) {
	if size < 1 || size > 4 {
		b.fail(call, "invalid size %d for slot %d", size, slot)
		return
	}
	if b.arrayBuffer == 0 {
		b.fail(call, "no array buffer bound for slot %d", slot)
		return
	}
	st := b.attrib(call, slot)
	if st == nil {
		return
	}
	st.Integer = integer
	st.Size = size
	st.Scalar = scalar
	st.Stride = stride
	st.Offset = offset
	st.Buffer = b.arrayBuffer
}

func (b *Backend) VertexAttribPointer(slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr) {
	b.attribPointer("VertexAttribPointer", slot, size, scalar, stride, offset, false)
}

func (b *Backend) VertexAttribIPointer(slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr) {
	if scalar == metadata.ScalarTypeFloat32 {
		b.fail("VertexAttribIPointer", "float type on integer path for slot %d", slot)
		return
	}
	b.attribPointer("VertexAttribIPointer", slot, size, scalar, stride, offset, true)
}

func (b *Backend) EnableVertexAttribArray(slot uint32) {
	if st := b.attrib("EnableVertexAttribArray", slot); st != nil {
		st.Enabled = true
	}
}

func (b *Backend) VertexAttribDivisor(slot uint32, divisor uint32) {
	if st := b.attrib("VertexAttribDivisor", slot); st != nil {
		st.Divisor = divisor
	}
}

func (b *Backend) BeginTransformFeedback(kind metadata.PrimitiveTopology) {
	if b.feedback.active {
		b.fail("BeginTransformFeedback", "transform feedback already active")
		return
	}
	if b.feedbackBindings[0] == 0 {
		b.fail("BeginTransformFeedback", "no buffer bound to feedback index 0")
		return
	}
	if p, ok := b.programs[b.program]; !ok || len(p.varyings) == 0 {
		b.fail("BeginTransformFeedback", "program %d captures no varyings", b.program)
		return
	}
	switch kind {
	case metadata.PrimitiveTopologyPoints, metadata.PrimitiveTopologyLines, metadata.PrimitiveTopologyTriangles:
	default:
		b.fail("BeginTransformFeedback", "invalid capture primitive %s", kind)
		return
	}
	b.feedback = feedbackState{active: true, kind: kind}
}

func (b *Backend) EndTransformFeedback() {
	if !b.feedback.active {
		b.fail("EndTransformFeedback", "transform feedback not active")
		return
	}
	b.feedback.active = false
}

func (b *Backend) GenQuery() uint32 {
	id := b.queryNames.acquire()
	b.queries[id] = &queryObject{}
	return id
}

func (b *Backend) DeleteQuery(id uint32) {
	if id == 0 {
		return
	}
	if err := b.queryNames.release(id); err != nil {
		b.fail("DeleteQuery", "%s", err)
		return
	}
	delete(b.queries, id)
}

func (b *Backend) BeginQuery(target metadata.QueryTarget, id uint32) {
	q, ok := b.queries[id]
	if !ok {
		b.fail("BeginQuery", "unknown query %d", id)
		return
	}
	if _, active := b.activeQueries[target]; active {
		b.fail("BeginQuery", "query already active on target")
		return
	}
	q.target = target
	q.result = 0
	b.activeQueries[target] = id
}

func (b *Backend) EndQuery(target metadata.QueryTarget) {
	if _, active := b.activeQueries[target]; !active {
		b.fail("EndQuery", "no active query on target")
		return
	}
	delete(b.activeQueries, target)
}

func (b *Backend) QueryResult(id uint32) uint32 {
	q, ok := b.queries[id]
	if !ok {
		b.fail("QueryResult", "unknown query %d", id)
		return 0
	}
	return q.result
}

func (b *Backend) ActiveTexture(unit uint32) {
	b.activeTextureUnit = unit
}

func (b *Backend) BindTexture(target metadata.TextureTarget, id uint32) {
	b.textures[b.activeTextureUnit] = metadata.TextureBinding{Target: target, ID: id}
}

func (b *Backend) SetBlend(mode metadata.BlendMode) {
	b.blend = mode
}

func (b *Backend) validateDraw(call string, count int32, instances int32) *vertexArrayObject {
	vao, ok := b.vertexArrays[b.boundVertexArray]
	if !ok {
		b.fail(call, "no vertex array bound")
		return nil
	}
	if count < 0 || instances < 0 {
		b.fail(call, "negative count %d / instances %d", count, instances)
		return nil
	}
	return vao
}

func (b *Backend) record(call string, mode metadata.PrimitiveTopology, first, count, instances int32) {
	textures := make(map[uint32]metadata.TextureBinding, len(b.textures))
	for unit, tex := range b.textures {
		textures[unit] = tex
	}
	b.draws = append(b.draws, DrawRecord{
		Call:        call,
		Mode:        mode,
		First:       first,
		Count:       count,
		Instances:   instances,
		VertexArray: b.boundVertexArray,
		Program:     b.program,
		Textures:    textures,
		Blend:       b.blend,
	})

	if !b.feedback.active {
		return
	}
	// captured output, one primitive per VerticesPerPrimitive input vertices
	written := uint32(count) * uint32(instances) / b.feedback.kind.VerticesPerPrimitive()
	b.feedback.primitives += written
	if id, ok := b.activeQueries[metadata.QueryTargetPrimitivesWritten]; ok {
		b.queries[id].result += written
	}
}

func (b *Backend) DrawArrays(mode metadata.PrimitiveTopology, first int32, count int32) {
	if b.validateDraw("DrawArrays", count, 1) == nil {
		return
	}
	b.record("DrawArrays", mode, first, count, 1)
}

func (b *Backend) DrawArraysInstanced(mode metadata.PrimitiveTopology, first int32, count int32, instances int32) {
	if b.validateDraw("DrawArraysInstanced", count, instances) == nil {
		return
	}
	b.record("DrawArraysInstanced", mode, first, count, instances)
}

func (b *Backend) DrawElements(mode metadata.PrimitiveTopology, count int32) {
	vao := b.validateDraw("DrawElements", count, 1)
	if vao == nil {
		return
	}
	if vao.elementBuffer == 0 {
		b.fail("DrawElements", "no element buffer in vertex array %d", b.boundVertexArray)
		return
	}
	b.record("DrawElements", mode, 0, count, 1)
}

func (b *Backend) DrawElementsInstanced(mode metadata.PrimitiveTopology, count int32, instances int32) {
	vao := b.validateDraw("DrawElementsInstanced", count, instances)
	if vao == nil {
		return
	}
	if vao.elementBuffer == 0 {
		b.fail("DrawElementsInstanced", "no element buffer in vertex array %d", b.boundVertexArray)
		return
	}
	b.record("DrawElementsInstanced", mode, 0, count, instances)
}

func (b *Backend) BindFramebuffer(id uint32) {
	b.framebuffer = id
}

func (b *Backend) DrawBuffers(attachments []uint32) {
	b.drawBuffers = append(b.drawBuffers[:0], attachments...)
}

func (b *Backend) Viewport(v metadata.Viewport) {
	b.viewport = v
}

func (b *Backend) ClearColor(r, g, bl, a float32) {
	b.clearColour = mgl32.Vec4{r, g, bl, a}
}

func (b *Backend) Clear(flags metadata.ClearFlags) {
	b.clears++
}

func (b *Backend) ClearRegion(x, y, width, height int32, colour mgl32.Vec4, drawBuffer int32) {
	if width < 0 || height < 0 {
		b.fail("ClearRegion", "negative size %dx%d", width, height)
		return
	}
	if drawBuffer < 0 || int(drawBuffer) >= len(b.drawBuffers) {
		b.fail("ClearRegion", "draw buffer %d out of range", drawBuffer)
		return
	}
	b.clears++
}

// Inspection helpers.

// Errors returns every misuse recorded so far.
func (b *Backend) Errors() []error {
	return b.errors
}

func (b *Backend) IsBuffer(id uint32) bool {
	_, ok := b.buffers[id]
	return ok
}

func (b *Backend) IsVertexArray(id uint32) bool {
	_, ok := b.vertexArrays[id]
	return ok
}

func (b *Backend) IsQuery(id uint32) bool {
	_, ok := b.queries[id]
	return ok
}

// BufferContents returns a copy of the storage of buffer id.
func (b *Backend) BufferContents(id uint32) []byte {
	buf, ok := b.buffers[id]
	if !ok {
		return nil
	}
	out := make([]byte, len(buf.data))
	copy(out, buf.data)
	return out
}

func (b *Backend) BufferUsageOf(id uint32) metadata.BufferUsage {
	if buf, ok := b.buffers[id]; ok {
		return buf.usage
	}
	return metadata.BufferUsageStaticDraw
}

// Attrib returns the state of slot in vertex array vao.
func (b *Backend) Attrib(vao uint32, slot uint32) (AttribState, bool) {
	v, ok := b.vertexArrays[vao]
	if !ok {
		return AttribState{}, false
	}
	st, ok := v.attribs[slot]
	if !ok {
		return AttribState{}, false
	}
	return *st, true
}

// ElementBuffer returns the index buffer recorded in vertex array vao.
func (b *Backend) ElementBuffer(vao uint32) uint32 {
	if v, ok := b.vertexArrays[vao]; ok {
		return v.elementBuffer
	}
	return 0
}

// Live returns the number of existing objects of kind.
func (b *Backend) Live(kind metadata.ObjectKind) int {
	switch kind {
	case metadata.ObjectKindBuffer:
		return b.bufferNames.live()
	case metadata.ObjectKindVertexArray:
		return b.vertexArrayNames.live()
	case metadata.ObjectKindQuery:
		return b.queryNames.live()
	}
	return 0
}

func (b *Backend) BoundVertexArray() uint32 {
	return b.boundVertexArray
}

func (b *Backend) FeedbackActive() bool {
	return b.feedback.active
}

func (b *Backend) Draws() []DrawRecord {
	return b.draws
}

func (b *Backend) LastDraw() (DrawRecord, bool) {
	if len(b.draws) == 0 {
		return DrawRecord{}, false
	}
	return b.draws[len(b.draws)-1], true
}

func (b *Backend) CurrentViewport() metadata.Viewport {
	return b.viewport
}

func (b *Backend) CurrentClearColour() mgl32.Vec4 {
	return b.clearColour
}

func (b *Backend) Clears() int {
	return b.clears
}

func (b *Backend) Framebuffer() uint32 {
	return b.framebuffer
}

func (b *Backend) Blend() metadata.BlendMode {
	return b.blend
}
