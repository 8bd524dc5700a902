package proc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiagnosticsPicksMarkersWithContext(t *testing.T) {
	d := NewDiagBuffer()
	d.Add("[1/4] Building CXX object a.o")
	d.Add("src/main.cpp:10:5: error: unknown identifier 'froble'")
	d.Add("   10 |     froble();")
	d.Add("      |     ^~~~~~")
	d.Add("1 error generated.")
	d.Add("ninja: build stopped: subcommand failed.")

	diags := d.Diagnostics()
	require.Equal(t, []string{
		"src/main.cpp:10:5: error: unknown identifier 'froble'",
		"   10 |     froble();",
		"      |     ^~~~~~",
		"1 error generated.",
	}, diags)
	require.True(t, d.CompileError())
}

func TestDiagnosticsFallsBackToTail(t *testing.T) {
	d := NewDiagBuffer()
	for i := 0; i < 30; i++ {
		d.Add(fmt.Sprintf("chatter line %d", i))
	}

	diags := d.Diagnostics()
	require.Len(t, diags, 12)
	require.Equal(t, "chatter line 18", diags[0])
	require.Equal(t, "chatter line 29", diags[11])
	require.False(t, d.CompileError())
}

func TestDiagnosticsDropsBlankLines(t *testing.T) {
	d := NewDiagBuffer()
	d.Add("")
	d.Add("   ")
	d.Add("only line")

	require.Equal(t, []string{"only line"}, d.Diagnostics())
}

func TestDiagnosticsRingEvictsOldest(t *testing.T) {
	d := NewDiagBuffer()
	d.Add("CMake Error at CMakeLists.txt:3 (message):")
	for i := 0; i < 350; i++ {
		d.Add(fmt.Sprintf("filler %d", i))
	}

	// The marker line was evicted, so only the tail remains.
	diags := d.Diagnostics()
	require.Len(t, diags, 12)
	require.Equal(t, "filler 349", diags[11])
}

func TestDiagnosticsDedupsOverlappingContext(t *testing.T) {
	d := NewDiagBuffer()
	d.Add("src/a.cpp:1:1: error: first")
	d.Add("src/a.cpp:2:1: error: second")
	d.Add("note: candidate")

	diags := d.Diagnostics()
	require.Equal(t, []string{
		"src/a.cpp:1:1: error: first",
		"src/a.cpp:2:1: error: second",
		"note: candidate",
	}, diags)
}

func TestCompileErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		line string
		want bool
	}{
		{name: "gcc error", line: "main.cpp:3:1: error: expected ';'", want: true},
		{name: "fatal error", line: "main.cpp:1:10: fatal error: missing.hpp: No such file or directory", want: true},
		{name: "linker undefined reference", line: "ld: undefined reference to `math::add(int, int)'", want: true},
		{name: "msvc error code", line: "main.cpp(3): error C2065: 'froble': undeclared identifier", want: true},
		{name: "msvc-ish but not a code", line: "error Configuration failed", want: false},
		{name: "warning only", line: "main.cpp:7:2: warning: unused variable", want: false},
		{name: "cmake error", line: "CMake Error: could not find CMAKE_CXX_COMPILER", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDiagBuffer()
			d.Add(tc.line)
			require.Equal(t, tc.want, d.CompileError())
		})
	}
}
