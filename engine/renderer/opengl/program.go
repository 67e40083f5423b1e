package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/core"
)

/** @brief GLSL sources of one program. Geometry is optional. */
type ProgramSource struct {
	Name     string
	Vertex   string
	Geometry string
	Fragment string
	/**
	 * @brief Vertex or geometry outputs written to feedback buffers, interleaved into
	 * the buffer bound at index 0.
	 */
	FeedbackVaryings []string
}

// Program is a linked GLSL program.
type Program struct {
	backend  *Backend
	name     string
	id       uint32
	uniforms map[string]int32
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// NewProgram compiles and links src. Feedback varyings are recorded before linking.
func (b *Backend) NewProgram(src ProgramSource) (*Program, error) {
	stages := []struct {
		kind   uint32
		source string
	}{
		{gl.VERTEX_SHADER, src.Vertex},
		{gl.GEOMETRY_SHADER, src.Geometry},
		{gl.FRAGMENT_SHADER, src.Fragment},
	}

	id := gl.CreateProgram()
	var shaders []uint32
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()
	for _, stage := range stages {
		if stage.source == "" {
			continue
		}
		shader, err := compileShader(stage.kind, stage.source)
		if err != nil {
			gl.DeleteProgram(id)
			err = fmt.Errorf("program %s: %w", src.Name, err)
			core.LogError("%s", err)
			return nil, err
		}
		gl.AttachShader(id, shader)
		shaders = append(shaders, shader)
	}

	if len(src.FeedbackVaryings) > 0 {
		varyings := make([]string, len(src.FeedbackVaryings))
		for i, v := range src.FeedbackVaryings {
			varyings[i] = v + "\x00"
		}
		cvaryings, free := gl.Strs(varyings...)
		gl.TransformFeedbackVaryings(id, int32(len(varyings)), cvaryings, gl.INTERLEAVED_ATTRIBS)
		free()
	}

	gl.LinkProgram(id)
	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		err := fmt.Errorf("program %s: failed to link: %s", src.Name, strings.TrimRight(log, "\x00"))
		core.LogError("%s", err)
		return nil, err
	}
	b.check("LinkProgram")
	core.LogGen("linked program %s (%d)", src.Name, id)

	return &Program{
		backend:  b,
		name:     src.Name,
		id:       id,
		uniforms: make(map[string]int32),
	}, nil
}

func (p *Program) ID() uint32 {
	return p.id
}

func (p *Program) Name() string {
	return p.name
}

func (p *Program) Use() {
	p.backend.UseProgram(p.id)
}

// UniformLocation looks the uniform up once and caches the result, -1 included.
func (p *Program) UniformLocation(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.backend.check("GetUniformLocation")
	p.uniforms[name] = loc
	return loc
}

func (p *Program) SetMat4(location int32, m mgl32.Mat4) {
	if location < 0 {
		return
	}
	gl.UniformMatrix4fv(location, 1, false, &m[0])
	p.backend.check("UniformMatrix4fv")
}

// Delete releases the program. The Program must not be used afterwards.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	gl.DeleteProgram(p.id)
	p.backend.check("DeleteProgram")
	core.LogGen("deleted program %s (%d)", p.name, p.id)
	p.id = 0
}
