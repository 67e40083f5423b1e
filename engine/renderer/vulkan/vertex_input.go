package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/geometry"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

const (
	// VertexBinding holds per-vertex data.
	VertexBinding uint32 = 0
	// InstanceBinding holds per-instance data, present only for instanced schemas.
	InstanceBinding uint32 = 1
)

var formats = map[metadata.ScalarType][4]vk.Format{
	metadata.ScalarTypeFloat32: {vk.FormatR32Sfloat, vk.FormatR32g32Sfloat, vk.FormatR32g32b32Sfloat, vk.FormatR32g32b32a32Sfloat},
	metadata.ScalarTypeUInt32:  {vk.FormatR32Uint, vk.FormatR32g32Uint, vk.FormatR32g32b32Uint, vk.FormatR32g32b32a32Uint},
	metadata.ScalarTypeInt32:   {vk.FormatR32Sint, vk.FormatR32g32Sint, vk.FormatR32g32b32Sint, vk.FormatR32g32b32a32Sint},
	metadata.ScalarTypeUByte:   {vk.FormatR8Uint, vk.FormatR8g8Uint, vk.FormatR8g8b8Uint, vk.FormatR8g8b8a8Uint},
}

// Format returns the attribute format for count elements of scalar.
func Format(scalar metadata.ScalarType, count uint32) (vk.Format, error) {
	table, ok := formats[scalar]
	if !ok || count < 1 || count > 4 {
		return vk.FormatUndefined, fmt.Errorf("no format for %d x %s: %w", count, scalar, core.ErrInvalidArgument)
	}
	return table[count-1], nil
}

/** @brief The vertex input description of a pipeline consuming a geometry schema. */
type VertexInput struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

// VertexInputState describes schema for pipeline creation. Locations and offsets follow
// the same rules as the OpenGL attribute pointers, so one shader source serves both.
func VertexInputState(schema *geometry.Schema) (*VertexInput, error) {
	if schema.Len() == 0 {
		return nil, fmt.Errorf("func VertexInputState: %w", core.ErrEmptySchema)
	}

	in := &VertexInput{}
	kinds := []struct {
		binding     uint32
		perInstance bool
		stride      uint32
		rate        vk.VertexInputRate
	}{
		{VertexBinding, false, schema.VertexStride(), vk.VertexInputRateVertex},
		{InstanceBinding, true, schema.InstanceStride(), vk.VertexInputRateInstance},
	}
	for _, kind := range kinds {
		if kind.stride == 0 {
			continue
		}
		in.Bindings = append(in.Bindings, vk.VertexInputBindingDescription{
			Binding:   kind.binding,
			Stride:    kind.stride,
			InputRate: kind.rate,
		})
		for _, b := range schema.Bindings(kind.perInstance) {
			format, err := Format(b.Scalar, uint32(b.Size))
			if err != nil {
				core.LogError("%s", err)
				return nil, err
			}
			in.Attributes = append(in.Attributes, vk.VertexInputAttributeDescription{
				Location: b.Slot,
				Binding:  kind.binding,
				Format:   format,
				Offset:   uint32(b.Offset),
			})
		}
	}
	return in, nil
}

// CreateInfo wraps the description for vk.GraphicsPipelineCreateInfo.
func (in *VertexInput) CreateInfo() vk.PipelineVertexInputStateCreateInfo {
	return vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(in.Bindings)),
		PVertexBindingDescriptions:      in.Bindings,
		VertexAttributeDescriptionCount: uint32(len(in.Attributes)),
		PVertexAttributeDescriptions:    in.Attributes,
	}
}
