// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dataprep/internal/container"
	"github.com/pdiddy/dataprep/pkg/types"
)

// stubRuntime implements container.Runtime for testing.
type stubRuntime struct {
	imageErr error
	run      func(spec container.RunSpec) (string, error)
	specs    []container.RunSpec
}

func (s *stubRuntime) Name() string { return "docker" }
func (s *stubRuntime) Available() bool { return true }
func (s *stubRuntime) ImageExists(_ string) error { return s.imageErr }
func (s *stubRuntime) Run(_ context.Context, spec container.RunSpec) (string, error) {
	s.specs = append(s.specs, spec)
	if s.run != nil {
		return s.run(spec)
	}
	return "", nil
}

func TestNewMarkerConverterImageMissing(t *testing.T) {
	rt := &stubRuntime{imageErr: errors.New("no such image")}
	_, err := NewMarkerConverter(rt, types.PDFConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker image not available in docker")
}

func TestMarkerSpec(t *testing.T) {
	m, err := NewMarkerConverter(&stubRuntime{}, types.PDFConfig{
		MaxPages:        10,
		ParallelFactor:  2,
		BatchMultiplier: 3,
		Langs:           "English,Chinese",
	})
	require.NoError(t, err)

	spec := m.Spec("/data/in/sub/a.pdf", "/data/out/sub/a.md")
	assert.Equal(t, DefaultMarkerImage, spec.Image)
	assert.Equal(t, []container.Mount{
		{Host: "/data/in/sub", Container: "/pdfs_in", ReadOnly: true},
		{Host: "/data/out/sub", Container: "/pdfs_out"},
	}, spec.Mounts)
	assert.Equal(t, []string{
		"python", "convert_single.py", "/pdfs_in/a.pdf", "/pdfs_out/a.md",
		"--parallel_factor", "2",
		"--max_pages", "10",
		"--batch_multiplier", "3",
		"--langs", "English,Chinese",
	}, spec.Args)
}

func TestMarkerSpecOmitsUnsetFlags(t *testing.T) {
	m, err := NewMarkerConverter(&stubRuntime{}, types.PDFConfig{Image: "marker:dev"})
	require.NoError(t, err)

	spec := m.Spec("/in/a.pdf", "/out/a.md")
	assert.Equal(t, "marker:dev", spec.Image)
	assert.Equal(t, []string{"python", "convert_single.py", "/pdfs_in/a.pdf", "/pdfs_out/a.md"}, spec.Args)
}

func TestMarkerConvert(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	dst := filepath.Join(dir, "out", "a.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))

	t.Run("output written", func(t *testing.T) {
		rt := &stubRuntime{run: func(spec container.RunSpec) (string, error) {
			// Simulate marker writing into the mounted output directory.
			return "converted 1 pdf", os.WriteFile(filepath.Join(spec.Mounts[1].Host, "a.md"), []byte("# A"), 0o644)
		}}
		m, err := NewMarkerConverter(rt, types.PDFConfig{})
		require.NoError(t, err)

		out, err := m.Convert(context.Background(), src, dst)
		require.NoError(t, err)
		assert.Equal(t, "converted 1 pdf", out)
		require.Len(t, rt.specs, 1)
	})

	t.Run("no output produced", func(t *testing.T) {
		other := filepath.Join(dir, "out", "b.md")
		m, err := NewMarkerConverter(&stubRuntime{}, types.PDFConfig{})
		require.NoError(t, err)

		_, err = m.Convert(context.Background(), filepath.Join(dir, "b.pdf"), other)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "produced no output")
	})

	t.Run("container failure", func(t *testing.T) {
		rt := &stubRuntime{run: func(container.RunSpec) (string, error) {
			return "Traceback", errors.New("exit status 1")
		}}
		m, err := NewMarkerConverter(rt, types.PDFConfig{})
		require.NoError(t, err)

		out, err := m.Convert(context.Background(), src, dst)
		require.Error(t, err)
		assert.Equal(t, "Traceback", out)
		assert.Contains(t, err.Error(), "converting")
	})
}
