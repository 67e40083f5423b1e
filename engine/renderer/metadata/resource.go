package metadata

import "path/filepath"

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a file the engine loads. */
	ResourceTypeNone ResourceType = iota
	/** @brief Vertex stage GLSL source (.vert). */
	ResourceTypeVertexShader
	/** @brief Geometry stage GLSL source (.geom). */
	ResourceTypeGeometryShader
	/** @brief Fragment stage GLSL source (.frag). */
	ResourceTypeFragmentShader
	/** @brief PCM audio clip (.wav). */
	ResourceTypeAudio
	/** @brief TOML configuration (.toml). */
	ResourceTypeConfig
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeVertexShader:
		return "vertex shader"
	case ResourceTypeGeometryShader:
		return "geometry shader"
	case ResourceTypeFragmentShader:
		return "fragment shader"
	case ResourceTypeAudio:
		return "audio"
	case ResourceTypeConfig:
		return "config"
	default:
		return "none"
	}
}

// IsShader reports whether t is one of the shader stage sources.
func (t ResourceType) IsShader() bool {
	return t >= ResourceTypeVertexShader && t <= ResourceTypeFragmentShader
}

// ResourceTypeOf classifies a file by its extension.
func ResourceTypeOf(path string) ResourceType {
	switch filepath.Ext(path) {
	case ".vert":
		return ResourceTypeVertexShader
	case ".geom":
		return ResourceTypeGeometryShader
	case ".frag":
		return ResourceTypeFragmentShader
	case ".wav":
		return ResourceTypeAudio
	case ".toml":
		return ResourceTypeConfig
	default:
		return ResourceTypeNone
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	Type ResourceType
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
