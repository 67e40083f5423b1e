package testbed

import (
	"fmt"

	"github.com/spaghettifunk/tessera/engine/assets/loaders"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/headless"
	"github.com/spaghettifunk/tessera/engine/renderer/surface"
)

// Program is a shader the demo can draw with and release.
type Program interface {
	surface.Shader
	Delete()
}

// ProgramBuilder links src on backend. varyings lists the outputs captured into feedback
// buffers, empty for programs that do not write one.
type ProgramBuilder func(backend renderer.RendererBackend, src *loaders.ShaderSources, varyings []string) (Program, error)

const (
	programQuad      = "quad"
	programField     = "field"
	programAdvance   = "advance"
	programParticles = "particles"
)

// feedbackVaryings lists the captured outputs of the programs that write feedback buffers.
var feedbackVaryings = map[string][]string{
	programAdvance: {"outPosition", "outVelocity"},
}

// HeadlessPrograms builds programs on the headless backend. Sources are not compiled.
func HeadlessPrograms(backend renderer.RendererBackend, src *loaders.ShaderSources, varyings []string) (Program, error) {
	b, ok := backend.(*headless.Backend)
	if !ok {
		err := fmt.Errorf("no program support on the %s backend: %w", backend.Name(), core.ErrInvalidArgument)
		core.LogError("%s", err)
		return nil, err
	}
	if len(varyings) > 0 {
		return b.NewFeedbackProgram(varyings, surface.TransformUniform), nil
	}
	return b.NewProgram(surface.TransformUniform), nil
}
