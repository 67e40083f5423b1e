package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/geometry"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func TestVertexInputStateSharesSlots(t *testing.T) {
	s := geometry.NewSchema()
	require.NoError(t, s.AddFloat(3, false))
	require.NoError(t, s.AddUint(2, true))
	require.NoError(t, s.AddUbyte(4, false))

	in, err := VertexInputState(s)
	require.NoError(t, err)

	assert.Equal(t, []vk.VertexInputBindingDescription{
		{Binding: VertexBinding, Stride: 28, InputRate: vk.VertexInputRateVertex},
		{Binding: InstanceBinding, Stride: 8, InputRate: vk.VertexInputRateInstance},
	}, in.Bindings)
	assert.Equal(t, []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: VertexBinding, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 2, Binding: VertexBinding, Format: vk.FormatR8g8b8a8Uint, Offset: 12},
		{Location: 1, Binding: InstanceBinding, Format: vk.FormatR32g32Uint, Offset: 0},
	}, in.Attributes)

	info := in.CreateInfo()
	assert.Equal(t, uint32(2), info.VertexBindingDescriptionCount)
	assert.Equal(t, uint32(3), info.VertexAttributeDescriptionCount)
}

func TestVertexInputStateWithoutInstancing(t *testing.T) {
	s := geometry.NewSchema()
	require.NoError(t, s.AddInt(1, false))

	in, err := VertexInputState(s)
	require.NoError(t, err)
	require.Len(t, in.Bindings, 1)
	assert.Equal(t, vk.FormatR32Sint, in.Attributes[0].Format)

	_, err = VertexInputState(geometry.NewSchema())
	assert.ErrorIs(t, err, core.ErrEmptySchema)
}

func TestFormat(t *testing.T) {
	f, err := Format(metadata.ScalarTypeFloat32, 4)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR32g32b32a32Sfloat, f)

	_, err = Format(metadata.ScalarTypeFloat32, 0)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = Format(metadata.ScalarType(9), 1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
