package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileSingleFileProducesCOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `shuru
bol(2 + 3 * 4)
bass
`)

	res, err := Compile(path, DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.Contains(t, res.Output, "#include <stdio.h>")
	assert.Contains(t, res.Output, "int main(void) {")
}

func TestCompileStackBackendSelected(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `shuru
bol(1)
bass
`)

	cfg := DefaultConfig()
	cfg.Backend = BackendStack
	res, err := Compile(path, cfg)
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.NotContains(t, res.Output, "#include")
}

func TestCompileMergesImportedFunction(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.bhai", `bhai double(bhai x) {
	nikal x * 2
}

shuru
bass
`)
	main := writeFile(t, dir, "main.bhai", `laao "lib.bhai"
shuru
bol(double(21))
bass
`)

	res, err := Compile(main, DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.True(t, strings.Contains(res.Output, "double"))
}

func TestCompileReportsSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `shuru
bol(
bass
`)
	res, err := Compile(path, DefaultConfig())
	require.NoError(t, err)
	assert.False(t, res.Ok())
	assert.NotEmpty(t, res.Sink.All())
}

func TestCompileDetectsImportCycleWithOneDiagnostic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bhai", `laao "b.bhai"
shuru
bass
`)
	bPath := writeFile(t, dir, "b.bhai", `laao "a.bhai"
shuru
bass
`)
	_ = bPath

	res, err := Compile(filepath.Join(dir, "a.bhai"), DefaultConfig())
	require.NoError(t, err)
	assert.False(t, res.Ok())

	cycleDiags := 0
	for _, d := range res.Sink.All() {
		if strings.Contains(d.Message, "import cycle") {
			cycleDiags++
		}
	}
	assert.Equal(t, 1, cycleDiags)
}

func TestCompileMissingFileReturnsError(t *testing.T) {
	_, err := Compile(filepath.Join(t.TempDir(), "missing.bhai"), DefaultConfig())
	assert.Error(t, err)
}

func TestCompileArithmeticPrintsFourteen(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `shuru
bhai x = 2 + 3 * 4
bol(x)
nikal 0
bass
`)
	res, err := Compile(path, DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.Contains(t, res.Output, "pk_print_int")
}

func TestCompileFloatCastPrintsDecimal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `shuru
decimal d = decimal(3) / 2.0
bol(d)
bass
`)
	for _, backend := range []Backend{BackendC, BackendStack} {
		cfg := DefaultConfig()
		cfg.Backend = backend
		res, err := Compile(path, cfg)
		require.NoError(t, err)
		require.True(t, res.Ok())
		assert.NotEmpty(t, res.Output)
	}
}

func TestCompileEmitStackAlongsideCBackend(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `shuru
bol(7)
bass
`)
	cfg := DefaultConfig()
	cfg.EmitStack = true
	res, err := Compile(path, cfg)
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.Contains(t, res.Output, "#include <stdio.h>")
	assert.NotEmpty(t, res.StackOutput)
	assert.NotContains(t, res.StackOutput, "#include")
}

func TestCompileDumpsRawIRAndSymbols(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bhai", `bhai square(bhai x) {
	nikal x * x
}

shuru
bol(1 + 2)
bass
`)
	res, err := Compile(path, DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.Contains(t, res.RawIR, "square")
	assert.Contains(t, res.Symbols, "func square")
}
