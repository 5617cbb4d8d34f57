// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Page is one rendered PDF page. Immutable after rasterization.
type Page struct {
	// Index is the zero-based page number.
	Index int `json:"index" yaml:"index"`

	// Width and Height are the rendered pixel dimensions.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// ImagePath is the rendered PNG on disk.
	ImagePath string `json:"image_path" yaml:"image_path"`
}

// ElementKind classifies a positioned unit of slide content.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementTable ElementKind = "table"
	ElementImage ElementKind = "image"
	ElementGroup ElementKind = "group"
)

// TableCell is one cell of a table element's grid.
type TableCell struct {
	// Row and Col locate the cell in the grid (zero-based).
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`

	// BBox is the cell region in page-pixel coordinates.
	BBox BBox `json:"bbox" yaml:"bbox"`

	// Text is the cell content, from the layout service or OCR backfill.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Element is a positioned unit of slide content. An Element exclusively owns
// its children; the tree is built by the decomposition engine and read by
// the assembler.
type Element struct {
	// Kind classifies the element.
	Kind ElementKind `json:"kind" yaml:"kind"`

	// BBox is the element region in page-pixel coordinates. Children lie
	// within their parent's box; roots lie within the page.
	BBox BBox `json:"bbox" yaml:"bbox"`

	// Depth is the recursion depth at which the element was produced
	// (0 for elements from the page-level extraction).
	Depth int `json:"depth" yaml:"depth"`

	// Text is the textual content for text elements.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// TextLevel distinguishes headings (1) from body text (0), as reported
	// by the layout service.
	TextLevel int `json:"text_level,omitempty" yaml:"text_level,omitempty"`

	// ImagePath points at the extracted sub-image for image elements,
	// relative to the extraction result directory.
	ImagePath string `json:"image_path,omitempty" yaml:"image_path,omitempty"`

	// Cells is the table-cell grid for table elements.
	Cells []TableCell `json:"cells,omitempty" yaml:"cells,omitempty"`

	// Children are nested elements discovered by recursive extraction.
	Children []*Element `json:"children,omitempty" yaml:"children,omitempty"`

	// Diagnostic records why a region was downgraded to a bare leaf
	// (sub-region extraction or OCR failure). Empty for healthy elements.
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

// EditableImage is the accumulated per-page result after decomposition and
// background synthesis. Fully populated before it reaches the assembler and
// never mutated afterward.
type EditableImage struct {
	// Page is the source page.
	Page Page `json:"page" yaml:"page"`

	// Elements are the root elements in reading/z-order.
	Elements []*Element `json:"elements" yaml:"elements"`

	// BackgroundPath is the slide background image: the inpainted clean
	// background, or the original page image in degraded mode.
	BackgroundPath string `json:"background_path" yaml:"background_path"`

	// Degraded reports that no clean background could be produced and the
	// original image is used instead.
	Degraded bool `json:"degraded" yaml:"degraded"`
}
