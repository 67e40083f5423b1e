package metadata

/** @brief Texture binding targets. */
type TextureTarget uint8

const (
	TextureTarget2D TextureTarget = iota
	TextureTarget2DArray
	TextureTargetCubeMap
	TextureTarget3D
)

/**
 * @brief A texture bound for a draw. The unit is the position of the binding in
 * the render states' texture list.
 */
type TextureBinding struct {
	/** @brief The kind of texture. */
	Target TextureTarget
	/** @brief The native texture name. */
	ID uint32
}

type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

type BlendEquation uint8

const (
	BlendEquationAdd BlendEquation = iota
	BlendEquationSubtract
	BlendEquationReverseSubtract
	BlendEquationMin
	BlendEquationMax
)

/**
 * @brief Separate colour/alpha blend configuration, or blending disabled.
 */
type BlendMode struct {
	SrcRGB        BlendFactor
	DstRGB        BlendFactor
	SrcAlpha      BlendFactor
	DstAlpha      BlendFactor
	RGBEquation   BlendEquation
	AlphaEquation BlendEquation
	Disabled      bool
}

// BlendAlpha is standard "source over" alpha blending.
var BlendAlpha = BlendMode{
	SrcRGB:        BlendFactorSrcAlpha,
	DstRGB:        BlendFactorOneMinusSrcAlpha,
	SrcAlpha:      BlendFactorOne,
	DstAlpha:      BlendFactorOneMinusSrcAlpha,
	RGBEquation:   BlendEquationAdd,
	AlphaEquation: BlendEquationAdd,
}

// BlendAdditive adds source colour onto the destination.
var BlendAdditive = BlendMode{
	SrcRGB:        BlendFactorSrcAlpha,
	DstRGB:        BlendFactorOne,
	SrcAlpha:      BlendFactorOne,
	DstAlpha:      BlendFactorOne,
	RGBEquation:   BlendEquationAdd,
	AlphaEquation: BlendEquationAdd,
}

var BlendNone = BlendMode{Disabled: true}

/** @brief Which buffers of the bound framebuffer to clear. */
type ClearFlags uint8

const (
	ClearColour ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

/** @brief X, Y, Width, Height in pixels. */
type Viewport struct {
	X, Y          int32
	Width, Height int32
}
