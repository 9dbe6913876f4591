// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "image"

// OCR layout categories the pipeline cares about.
const (
	CategoryPicture = "Picture"
)

// ListCategories are layout categories that indicate answer choices.
var ListCategories = []string{"List", "List-item", "Choice", "Options"}

// Region is one typed block from the OCR layout pass.
type Region struct {
	BBox     []int  `json:"bbox"` // [x1, y1, x2, y2] in source pixels
	Category string `json:"category"`
	Text     string `json:"text,omitempty"`
}

// Rect returns the bounding box as an image rectangle. A malformed box
// yields the empty rectangle.
func (r Region) Rect() image.Rectangle {
	if len(r.BBox) != 4 {
		return image.Rectangle{}
	}
	return image.Rect(r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3])
}

// IsPicture reports whether the region holds a diagram.
func (r Region) IsPicture() bool { return r.Category == CategoryPicture }

// IsList reports whether the region holds list or choice content.
func (r Region) IsList() bool {
	for _, c := range ListCategories {
		if r.Category == c {
			return true
		}
	}
	return false
}
