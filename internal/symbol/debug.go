package symbol

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// dumpRegion saves the raw region when a debug directory is configured.
func (e *Extractor) dumpRegion(region image.Image, role Role) {
	e.dump(region, fmt.Sprintf("%s_region.png", role))
}

func (e *Extractor) dumpMask(mask *image.Gray, role Role, index int) {
	e.dump(mask, fmt.Sprintf("%s_symbol_%d.png", role, index))
}

func (e *Extractor) dump(im image.Image, name string) {
	if e.params.DebugDir == "" {
		return
	}
	if err := os.MkdirAll(e.params.DebugDir, 0755); err != nil {
		e.logger.Warn("debug dir unavailable", zap.String("dir", e.params.DebugDir), zap.Error(err))
		return
	}
	path := filepath.Join(e.params.DebugDir, name)
	if err := imaging.Save(im, path); err != nil {
		e.logger.Warn("debug dump failed", zap.String("path", path), zap.Error(err))
	}
}
