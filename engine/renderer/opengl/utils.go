package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/tessera/engine/core"
)

func ConditionalOperator[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

func ErrorString(code uint32, getExtended bool) string {
	// From: https://registry.khronos.org/OpenGL-Refpages/gl4/html/glGetError.xhtml
	switch code {
	case gl.NO_ERROR:
		return ConditionalOperator(!getExtended, "GL_NO_ERROR", "GL_NO_ERROR No error has been recorded.")
	case gl.INVALID_ENUM:
		return ConditionalOperator(!getExtended, "GL_INVALID_ENUM", "GL_INVALID_ENUM An unacceptable value is specified for an enumerated argument.")
	case gl.INVALID_VALUE:
		return ConditionalOperator(!getExtended, "GL_INVALID_VALUE", "GL_INVALID_VALUE A numeric argument is out of range.")
	case gl.INVALID_OPERATION:
		return ConditionalOperator(!getExtended, "GL_INVALID_OPERATION", "GL_INVALID_OPERATION The specified operation is not allowed in the current state.")
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return ConditionalOperator(!getExtended, "GL_INVALID_FRAMEBUFFER_OPERATION", "GL_INVALID_FRAMEBUFFER_OPERATION The framebuffer object is not complete.")
	case gl.OUT_OF_MEMORY:
		return ConditionalOperator(!getExtended, "GL_OUT_OF_MEMORY", "GL_OUT_OF_MEMORY There is not enough memory left to execute the command.")
	}
	return fmt.Sprintf("GL error 0x%x", code)
}

// check drains the error state after call and aborts on the first error, reporting the
// caller of the backend method.
func (b *Backend) check(call string) {
	if !b.debugChecks {
		return
	}
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return
	}
	_, file, line, _ := runtime.Caller(2)
	for next := gl.GetError(); next != gl.NO_ERROR; next = gl.GetError() {
		core.LogError("%s: additional error %s", call, ErrorString(next, false))
	}
	core.LogFatal("%s failed at %s:%d: %s", call, file, line, ErrorString(code, true))
}
