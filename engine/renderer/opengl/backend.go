package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

var _ renderer.RendererBackend = (*Backend)(nil)

// Backend drives an OpenGL 4.1 core context. The context must be current on the calling
// thread for every method, New included.
type Backend struct {
	debugChecks bool
	framebuffer uint32
}

// New loads the GL entry points of the current context. With debugChecks every call is
// followed by an error check that aborts on failure.
func New(debugChecks bool) (*Backend, error) {
	if err := gl.Init(); err != nil {
		core.LogError("failed to initialize OpenGL: %s", err)
		return nil, err
	}
	core.LogInfo("OpenGL %s, GLSL %s, %s", gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	return &Backend{debugChecks: debugChecks}, nil
}

func (b *Backend) Name() string {
	return "opengl"
}

// MaxTextureUnits reports the combined texture unit count of the context.
func (b *Backend) MaxTextureUnits() int {
	var units int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &units)
	b.check("GetIntegerv")
	return int(units)
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (b *Backend) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	b.check("GenBuffers")
	return id
}

func (b *Backend) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
	b.check("DeleteBuffers")
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, id uint32) {
	gl.BindBuffer(bufferTargets[target], id)
	b.check("BindBuffer")
}

func (b *Backend) BufferData(target metadata.BufferTarget, size int, data []byte, usage metadata.BufferUsage) {
	gl.BufferData(bufferTargets[target], size, ptr(data), bufferUsages[usage])
	b.check("BufferData")
}

func (b *Backend) BufferSubData(target metadata.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTargets[target], offset, len(data), ptr(data))
	b.check("BufferSubData")
}

func (b *Backend) GetBufferSubData(target metadata.BufferTarget, offset int, out []byte) {
	if len(out) == 0 {
		return
	}
	gl.GetBufferSubData(bufferTargets[target], offset, len(out), ptr(out))
	b.check("GetBufferSubData")
}

func (b *Backend) BindBufferBase(target metadata.BufferTarget, index uint32, id uint32) {
	gl.BindBufferBase(bufferTargets[target], index, id)
	b.check("BindBufferBase")
}

func (b *Backend) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	b.check("GenVertexArrays")
	return id
}

func (b *Backend) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
	b.check("DeleteVertexArrays")
}

func (b *Backend) BindVertexArray(id uint32) {
	gl.BindVertexArray(id)
	b.check("BindVertexArray")
}

func (b *Backend) VertexAttribPointer(slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr) {
	gl.VertexAttribPointer(slot, size, scalarTypes[scalar], false, stride, gl.PtrOffset(int(offset)))
	b.check("VertexAttribPointer")
}

func (b *Backend) VertexAttribIPointer(slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr) {
	gl.VertexAttribIPointer(slot, size, scalarTypes[scalar], stride, gl.PtrOffset(int(offset)))
	b.check("VertexAttribIPointer")
}

func (b *Backend) EnableVertexAttribArray(slot uint32) {
	gl.EnableVertexAttribArray(slot)
	b.check("EnableVertexAttribArray")
}

func (b *Backend) VertexAttribDivisor(slot uint32, divisor uint32) {
	gl.VertexAttribDivisor(slot, divisor)
	b.check("VertexAttribDivisor")
}

func (b *Backend) BeginTransformFeedback(kind metadata.PrimitiveTopology) {
	gl.BeginTransformFeedback(topologies[kind])
	b.check("BeginTransformFeedback")
}

func (b *Backend) EndTransformFeedback() {
	gl.EndTransformFeedback()
	b.check("EndTransformFeedback")
}

func (b *Backend) GenQuery() uint32 {
	var id uint32
	gl.GenQueries(1, &id)
	b.check("GenQueries")
	return id
}

func (b *Backend) DeleteQuery(id uint32) {
	gl.DeleteQueries(1, &id)
	b.check("DeleteQueries")
}

func (b *Backend) BeginQuery(target metadata.QueryTarget, id uint32) {
	gl.BeginQuery(queryTargets[target], id)
	b.check("BeginQuery")
}

func (b *Backend) EndQuery(target metadata.QueryTarget) {
	gl.EndQuery(queryTargets[target])
	b.check("EndQuery")
}

func (b *Backend) QueryResult(id uint32) uint32 {
	var result uint32
	gl.GetQueryObjectuiv(id, gl.QUERY_RESULT, &result)
	b.check("GetQueryObjectuiv")
	return result
}

func (b *Backend) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	b.check("ActiveTexture")
}

func (b *Backend) BindTexture(target metadata.TextureTarget, id uint32) {
	gl.BindTexture(textureTargets[target], id)
	b.check("BindTexture")
}

func (b *Backend) SetBlend(mode metadata.BlendMode) {
	if mode.Disabled {
		gl.Disable(gl.BLEND)
		b.check("Disable")
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(blendFactors[mode.SrcRGB], blendFactors[mode.DstRGB], blendFactors[mode.SrcAlpha], blendFactors[mode.DstAlpha])
	b.check("BlendFuncSeparate")
	gl.BlendEquationSeparate(blendEquations[mode.RGBEquation], blendEquations[mode.AlphaEquation])
	b.check("BlendEquationSeparate")
}

func (b *Backend) DrawArrays(mode metadata.PrimitiveTopology, first int32, count int32) {
	gl.DrawArrays(topologies[mode], first, count)
	b.check("DrawArrays")
}

func (b *Backend) DrawArraysInstanced(mode metadata.PrimitiveTopology, first int32, count int32, instances int32) {
	gl.DrawArraysInstanced(topologies[mode], first, count, instances)
	b.check("DrawArraysInstanced")
}

func (b *Backend) DrawElements(mode metadata.PrimitiveTopology, count int32) {
	gl.DrawElements(topologies[mode], count, gl.UNSIGNED_INT, nil)
	b.check("DrawElements")
}

func (b *Backend) DrawElementsInstanced(mode metadata.PrimitiveTopology, count int32, instances int32) {
	gl.DrawElementsInstanced(topologies[mode], count, gl.UNSIGNED_INT, nil, instances)
	b.check("DrawElementsInstanced")
}

func (b *Backend) BindFramebuffer(id uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
	b.check("BindFramebuffer")
	b.framebuffer = id
}

// DrawBuffers maps attachment i to GL_COLOR_ATTACHMENTi, or to the back buffer while the
// window framebuffer is bound.
func (b *Backend) DrawBuffers(attachments []uint32) {
	if len(attachments) == 0 {
		return
	}
	bufs := make([]uint32, len(attachments))
	for i, a := range attachments {
		if b.framebuffer == 0 {
			bufs[i] = gl.BACK_LEFT
		} else {
			bufs[i] = gl.COLOR_ATTACHMENT0 + a
		}
	}
	if b.framebuffer == 0 {
		bufs = bufs[:1]
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
	b.check("DrawBuffers")
}

func (b *Backend) Viewport(v metadata.Viewport) {
	gl.Viewport(v.X, v.Y, v.Width, v.Height)
	b.check("Viewport")
}

func (b *Backend) ClearColor(r, g, bl, a float32) {
	gl.ClearColor(r, g, bl, a)
	b.check("ClearColor")
}

func (b *Backend) Clear(flags metadata.ClearFlags) {
	gl.Clear(clearMask(flags))
	b.check("Clear")
}

func (b *Backend) ClearRegion(x, y, width, height int32, colour mgl32.Vec4, drawBuffer int32) {
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(x, y, width, height)
	b.check("Scissor")
	gl.ClearBufferfv(gl.COLOR, drawBuffer, &colour[0])
	b.check("ClearBufferfv")
	gl.Disable(gl.SCISSOR_TEST)
}

// UseProgram is exposed for Program; the renderer boundary itself has no notion of programs.
func (b *Backend) UseProgram(id uint32) {
	gl.UseProgram(id)
	b.check("UseProgram")
}

func (b *Backend) String() string {
	return fmt.Sprintf("opengl(debug=%t)", b.debugChecks)
}
