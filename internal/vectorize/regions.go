// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package vectorize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/petar-djukic/geoframe/pkg/types"
)

// AnchorsFile is the consolidated anchor document written next to the
// problem image.
const AnchorsFile = "vector_anchors.json"

// Route modes.
const (
	ModeVision = "vision"
	ModeText   = "text"
)

// RouteSummary tells downstream stages whether a problem has a diagram.
type RouteSummary struct {
	Mode       string `json:"mode"`
	HasDiagram bool   `json:"has_diagram"`
	HasList    bool   `json:"has_list"`
}

// Route summarizes OCR regions.
func Route(regions []types.Region) RouteSummary {
	var s RouteSummary
	for _, r := range regions {
		s.HasDiagram = s.HasDiagram || r.IsPicture()
		s.HasList = s.HasList || r.IsList()
	}
	s.Mode = ModeText
	if s.HasDiagram {
		s.Mode = ModeVision
	}
	return s
}

// LoadRegions reads a JSON array of OCR regions.
func LoadRegions(path string) ([]types.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading regions: %w", err)
	}
	var regions []types.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("%w: regions %s: %v", ErrInputImage, path, err)
	}
	return regions, nil
}

// CropPath names the n-th picture crop of imagePath inside dir.
func CropPath(dir, imagePath string, n int) string {
	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	return filepath.Join(dir, fmt.Sprintf("%s__pic_i%d.png", stem, n))
}

// VectorizeProblem builds one anchor item per Picture region of
// imagePath, saving each crop into outDir, and writes the consolidated
// AnchorsFile there. Other regions are ignored. Regions whose box does not
// overlap the image are skipped with a log line; any other failure stops
// the run.
func (v *Vectorizer) VectorizeProblem(ctx context.Context, imagePath string, regions []types.Region, outDir string, opts Options) (*types.VectorAnchors, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	doc := &types.VectorAnchors{RunID: uuid.NewString(), VectorAnchors: []types.AnchorItem{}}
	n := 0
	for i, r := range regions {
		if !r.IsPicture() {
			continue
		}
		o := opts
		o.Crop = r.BBox
		o.CropOut = CropPath(outDir, imagePath, n)
		item, err := v.BuildAnchorItem(ctx, imagePath, o)
		if err != nil {
			if errors.Is(err, ErrEmptyCrop) {
				v.log.Info("skipping picture region outside the image", "region", i, "bbox", r.BBox)
				continue
			}
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		doc.VectorAnchors = append(doc.VectorAnchors, *item)
		n++
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding anchors: %w", err)
	}
	out := filepath.Join(outDir, AnchorsFile)
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("writing anchors: %w", err)
	}
	v.log.Info("vector anchors written", "path", out, "items", len(doc.VectorAnchors), "run", doc.RunID)
	return doc, nil
}
