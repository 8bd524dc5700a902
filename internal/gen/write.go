package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cxxforge/internal/types"
)

// ScriptFileName is the generated build script's name in each project
// directory.
const ScriptFileName = "CMakeLists.txt"

// WriteScript writes content to the project's build script, leaving the
// file untouched when the newly generated text is byte-identical to what
// already exists. The returned flag reports whether the file changed.
func WriteScript(dir string, content string) (bool, error) {
	path := filepath.Join(dir, ScriptFileName)
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, []byte(content)) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read existing build script: %s", path)).
			WithCause(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write build script: %s", path)).
			WithCause(err)
	}
	return true, nil
}

func unsupportedStrategy(name string, strategy types.FetchStrategy) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("package %s declares unsupported strategy: %s", name, strategy))
}

// scriptWriter accumulates script lines with a trailing newline per line.
type scriptWriter struct {
	b strings.Builder
}

func newScriptWriter() *scriptWriter {
	return &scriptWriter{}
}

func (w *scriptWriter) line(text string) {
	w.b.WriteString(text)
	w.b.WriteByte('\n')
}

func (w *scriptWriter) linef(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *scriptWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *scriptWriter) String() string {
	return w.b.String()
}
