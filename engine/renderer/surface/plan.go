package surface

import (
	"fmt"

	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/geometry"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// Drawable is the view of a geometry buffer the draw issuer needs. *geometry.Buffer and
// every *geometry.Mesh satisfy it. Instanced draws use UploadedInstanceCount rather than
// the staged instance count, so a cleaned mesh still draws every uploaded instance.
type Drawable interface {
	Name() string
	VertexArrayID() uint32
	Flags() geometry.Flags
	UploadedVertexCount() uint32
	UploadedIndexCount() uint32
	UploadedInstanceCount() uint32
	CapturedVertexCount() uint32
}

/** @brief The shape of the native draw call. */
type DrawShape uint8

const (
	DrawShapeArrays DrawShape = iota
	DrawShapeArraysInstanced
	DrawShapeElements
	DrawShapeElementsInstanced
)

func (s DrawShape) String() string {
	switch s {
	case DrawShapeArrays:
		return "arrays"
	case DrawShapeArraysInstanced:
		return "arrays_instanced"
	case DrawShapeElements:
		return "elements"
	case DrawShapeElementsInstanced:
		return "elements_instanced"
	}
	return fmt.Sprintf("DrawShape(%d)", uint8(s))
}

/** @brief A resolved draw call. */
type DrawCall struct {
	Shape DrawShape
	Mode  metadata.PrimitiveTopology
	/** @brief Vertices or indices to draw. */
	Count uint32
	/** @brief Instances to draw, 1 for non-instanced shapes. */
	Instances uint32
	/** @brief The count comes from a feedback capture. */
	Captured bool
}

type planRule struct {
	applies func(d Drawable, f geometry.Flags) bool
	plan    func(d Drawable, f geometry.Flags, mode metadata.PrimitiveTopology) DrawCall
}

func indexed(d Drawable, f geometry.Flags) bool {
	return f.IndexBufferCreated && d.UploadedIndexCount() > 0
}

func instanceCount(d Drawable, f geometry.Flags) (DrawShape, uint32) {
	if f.InstanceBufferCreated {
		return DrawShapeArraysInstanced, d.UploadedInstanceCount()
	}
	return DrawShapeArrays, 1
}

// planRules is evaluated in order; the first rule that applies decides the call.
var planRules = []planRule{
	{
		applies: func(d Drawable, f geometry.Flags) bool {
			return indexed(d, f) && !f.InstanceBufferCreated
		},
		plan: func(d Drawable, f geometry.Flags, mode metadata.PrimitiveTopology) DrawCall {
			return DrawCall{Shape: DrawShapeElements, Mode: mode, Count: d.UploadedIndexCount(), Instances: 1}
		},
	},
	{
		applies: func(d Drawable, f geometry.Flags) bool {
			return indexed(d, f) && f.InstanceBufferCreated
		},
		plan: func(d Drawable, f geometry.Flags, mode metadata.PrimitiveTopology) DrawCall {
			return DrawCall{Shape: DrawShapeElementsInstanced, Mode: mode, Count: d.UploadedIndexCount(), Instances: d.UploadedInstanceCount()}
		},
	},
	{
		applies: func(d Drawable, f geometry.Flags) bool {
			return f.Feedback
		},
		plan: func(d Drawable, f geometry.Flags, mode metadata.PrimitiveTopology) DrawCall {
			shape, instances := instanceCount(d, f)
			return DrawCall{Shape: shape, Mode: mode, Count: d.CapturedVertexCount(), Instances: instances, Captured: true}
		},
	},
	{
		applies: func(d Drawable, f geometry.Flags) bool {
			return true
		},
		plan: func(d Drawable, f geometry.Flags, mode metadata.PrimitiveTopology) DrawCall {
			shape, instances := instanceCount(d, f)
			return DrawCall{Shape: shape, Mode: mode, Count: d.UploadedVertexCount(), Instances: instances}
		},
	},
}

// Plan picks the draw call for d. Indices win over everything, then feedback output,
// then plain vertex arrays. Counts always come from what was uploaded or captured,
// never from host staging.
func Plan(d Drawable, mode metadata.PrimitiveTopology) DrawCall {
	f := d.Flags()
	for _, rule := range planRules {
		if rule.applies(d, f) {
			return rule.plan(d, f, mode)
		}
	}
	// unreachable, the last rule always applies
	return DrawCall{Mode: mode}
}

// Issue sends c to the backend.
func (c DrawCall) Issue(backend renderer.RendererBackend) {
	switch c.Shape {
	case DrawShapeArrays:
		backend.DrawArrays(c.Mode, 0, int32(c.Count))
	case DrawShapeArraysInstanced:
		backend.DrawArraysInstanced(c.Mode, 0, int32(c.Count), int32(c.Instances))
	case DrawShapeElements:
		backend.DrawElements(c.Mode, int32(c.Count))
	case DrawShapeElementsInstanced:
		backend.DrawElementsInstanced(c.Mode, int32(c.Count), int32(c.Instances))
	}
}
