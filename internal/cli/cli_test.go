package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/thunder/internal/core/codec"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "scene.bson")
	back := filepath.Join(dir, "scene.json")

	_, err := execute(t, "convert", "testdata/scene.json", bin)
	require.NoError(t, err)
	_, err = execute(t, "convert", bin, back)
	require.NoError(t, err)

	original, err := os.ReadFile("testdata/scene.json")
	require.NoError(t, err)
	want, err := codec.UnmarshalJSON(original)
	require.NoError(t, err)

	data, err := os.ReadFile(back)
	require.NoError(t, err)
	got, err := codec.UnmarshalJSON(data)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestConvertToStdout(t *testing.T) {
	out, err := execute(t, "convert", "--to", "json", "testdata/scene.json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `["Lamp",1,0,"root",{"power":1.0},[],{}]`)
}

func TestConvertErrors(t *testing.T) {
	_, err := execute(t, "convert", "testdata/scene.json", "out.xml")
	assert.ErrorIs(t, err, codec.ErrUnknown)

	_, err = execute(t, "convert", "--to", "yaml", "testdata/scene.json", "-")
	assert.ErrorIs(t, err, codec.ErrUnknown)

	_, err = execute(t, "convert", "testdata/missing.json", "-", "--to", "bson")
	assert.Error(t, err)

	_, err = execute(t, "convert", "only-one-arg")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", "testdata/scene.json")
	require.NoError(t, err)
	assert.Equal(t, "root [Lamp] 00000001\n"+
		"  child [Lamp] 00000002 links=1\n"+
		"  other [Lamp] 00000003\n", out)

	out, err = execute(t, "inspect", "-v", "testdata/scene.json")
	require.NoError(t, err)
	assert.Contains(t, out, "root [Lamp] 00000001\n  .power = 1.0\n")
}

func TestTypes(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Vector3")
	assert.Contains(t, out, "ByteArray")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "thunder.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[pool]\nsize = 1\n\n[system]\ntick = \"1ms\"\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--config", cfg, "--load", "testdata/scene.json"})
	require.NoError(t, cmd.ExecuteContext(ctx))
}

func TestRunBadConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", "testdata/missing.toml")
	assert.Error(t, err)
}
