package headless

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a shader program living in a headless Backend. Uniform locations are
// handed out on first lookup and matrix uploads are kept for inspection.
type Program struct {
	backend   *Backend
	id        uint32
	locations map[string]int32
	values    map[int32]mgl32.Mat4
	varyings  []string
}

// NewProgram registers a program. Names listed in uniforms resolve to a location; any
// other name resolves to -1, the way an optimised-out uniform does.
func (b *Backend) NewProgram(uniforms ...string) *Program {
	b.nextProgram++
	p := &Program{
		backend:   b,
		id:        b.nextProgram,
		locations: make(map[string]int32, len(uniforms)),
		values:    make(map[int32]mgl32.Mat4),
	}
	for i, name := range uniforms {
		p.locations[name] = int32(i)
	}
	b.programs[p.id] = p
	return p
}

// NewFeedbackProgram registers a program whose varyings are captured by transform feedback.
func (b *Backend) NewFeedbackProgram(varyings []string, uniforms ...string) *Program {
	p := b.NewProgram(uniforms...)
	p.varyings = append([]string(nil), varyings...)
	return p
}

// Varyings returns the captured outputs of the program.
func (p *Program) Varyings() []string {
	return p.varyings
}

func (p *Program) ID() uint32 {
	return p.id
}

func (p *Program) Use() {
	if p.backend.feedback.active {
		p.backend.fail("UseProgram", "program %d: transform feedback is active", p.id)
		return
	}
	p.backend.program = p.id
}

func (p *Program) UniformLocation(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}

func (p *Program) SetMat4(location int32, m mgl32.Mat4) {
	if location < 0 {
		return
	}
	if p.backend.program != p.id {
		p.backend.fail("UniformMatrix4fv", "program %d is not in use", p.id)
		return
	}
	p.values[location] = m
}

// Mat4 returns the last matrix uploaded to the named uniform.
func (p *Program) Mat4(name string) (mgl32.Mat4, bool) {
	loc, ok := p.locations[name]
	if !ok {
		return mgl32.Mat4{}, false
	}
	m, ok := p.values[loc]
	return m, ok
}

// CurrentProgram returns the program in use, 0 when none.
func (b *Backend) CurrentProgram() uint32 {
	return b.program
}

// Delete releases the program; it stops being current if it was.
func (p *Program) Delete() {
	if p.backend.program == p.id {
		p.backend.program = 0
	}
	delete(p.backend.programs, p.id)
	p.id = 0
}
