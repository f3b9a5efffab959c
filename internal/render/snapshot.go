package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"

	"glsandbox/internal/domain"
	"glsandbox/internal/scene"
)

// Clear colour of every demo
var background = gg.RGB(0.2, 0.3, 0.3)

// Snapshot rasterizes frame into a width x height PNG at path
func Snapshot(path string, frame scene.Frame, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("snapshot: invalid size %dx%d", width, height)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(background)
	dc.SetRGB(1.0, 0.5, 0.2)
	dc.SetLineWidth(1.5)

	w, h := float64(width), float64(height)
	for _, s := range frame.Segments {
		a, b, ok := clip(s.A, s.B)
		if !ok {
			continue
		}
		dc.DrawLine((a.X+1)/2*w, (1-a.Y)/2*h, (b.X+1)/2*w, (1-b.Y)/2*h)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("snapshot: stroke: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("snapshot: save %s: %w", path, err)
	}
	return nil
}

// SnapshotName returns the file name used for a frame of mode
func SnapshotName(mode domain.DrawMode, frame uint64) string {
	return fmt.Sprintf("%s-%06d.png", mode, frame)
}

// SaveSnapshot writes frame into dir and returns the file path
func SaveSnapshot(dir string, frame scene.Frame, width, height int) (string, error) {
	path := filepath.Join(dir, SnapshotName(frame.Stats.Mode, frame.Stats.Frame))
	return path, Snapshot(path, frame, width, height)
}
