// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/dataprep/internal/container"
	"github.com/pdiddy/dataprep/pkg/types"
)

// DefaultMarkerImage runs marker's convert_single.py.
const DefaultMarkerImage = "dibz15/marker_docker"

const (
	mountIn  = "/pdfs_in"
	mountOut = "/pdfs_out"
)

// MarkerConverter converts PDFs by running the marker image through a
// container.Runtime. The source and destination directories are mounted
// into the container; marker writes the Markdown file directly.
type MarkerConverter struct {
	runtime container.Runtime
	cfg     types.PDFConfig
}

// NewMarkerConverter creates a converter that uses rt to run the configured
// marker image. It verifies that the image exists locally before returning.
func NewMarkerConverter(rt container.Runtime, cfg types.PDFConfig) (*MarkerConverter, error) {
	if cfg.Image == "" {
		cfg.Image = DefaultMarkerImage
	}
	if err := rt.ImageExists(cfg.Image); err != nil {
		return nil, fmt.Errorf("marker image not available in %s: %w", rt.Name(), err)
	}
	return &MarkerConverter{runtime: rt, cfg: cfg}, nil
}

// Spec builds the container invocation for one file.
func (m *MarkerConverter) Spec(src, dst string) container.RunSpec {
	args := []string{
		"python", "convert_single.py",
		mountIn + "/" + filepath.Base(src),
		mountOut + "/" + filepath.Base(dst),
	}
	if m.cfg.ParallelFactor > 0 {
		args = append(args, "--parallel_factor", strconv.Itoa(m.cfg.ParallelFactor))
	}
	if m.cfg.MaxPages > 0 {
		args = append(args, "--max_pages", strconv.Itoa(m.cfg.MaxPages))
	}
	if m.cfg.BatchMultiplier > 0 {
		args = append(args, "--batch_multiplier", strconv.Itoa(m.cfg.BatchMultiplier))
	}
	if m.cfg.Langs != "" {
		args = append(args, "--langs", m.cfg.Langs)
	}

	return container.RunSpec{
		Image: m.cfg.Image,
		Mounts: []container.Mount{
			{Host: filepath.Dir(src), Container: mountIn, ReadOnly: true},
			{Host: filepath.Dir(dst), Container: mountOut},
		},
		Args: args,
	}
}

// Convert runs marker on src and checks that dst was produced.
func (m *MarkerConverter) Convert(ctx context.Context, src, dst string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", src, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dst, err)
	}

	out, err := m.runtime.Run(ctx, m.Spec(absSrc, absDst))
	if err != nil {
		return out, fmt.Errorf("converting %s with marker: %w", src, err)
	}

	if _, err := os.Stat(absDst); err != nil {
		return out, fmt.Errorf("marker produced no output for %s", src)
	}
	return out, nil
}
