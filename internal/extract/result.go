// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// ContentRecord is one entry of a *_content_list.json artifact. The bbox is
// in raster pixel coordinates of the submitted image, origin top-left.
type ContentRecord struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	TextLevel int       `json:"text_level,omitempty"`
	ImgPath   string    `json:"img_path,omitempty"`
	TableBody string    `json:"table_body,omitempty"`
	BBox      []float64 `json:"bbox,omitempty"`
	PageIdx   int       `json:"page_idx"`
}

// Bounds converts the record's raw bbox to a BBox. ok is false when the
// record carries no usable box.
func (r ContentRecord) Bounds() (types.BBox, bool) {
	if len(r.BBox) < 4 {
		return types.BBox{}, false
	}
	b := types.NewBBox(r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3])
	if b.IsEmpty() {
		return types.BBox{}, false
	}
	return b, true
}

// Result is a loaded and validated extraction result directory.
type Result struct {
	// Dir is the normalized result directory.
	Dir string

	// Records are the content-list entries, in service order.
	Records []ContentRecord
}

// LoadResult reads the content list from a normalized result directory.
// Image paths in the records are resolved relative to the directory that
// contains the content list, so callers can open them directly.
func LoadResult(dir string) (*Result, error) {
	var contentPath string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "_content_list.json") {
			contentPath = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if contentPath == "" {
		return nil, &MissingArtifactError{
			Artifact: "*_content_list.json",
			Dir:      dir,
			Listing:  listDir(dir, listingLimit),
		}
	}

	data, err := os.ReadFile(contentPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", contentPath, err)
	}

	var records []ContentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", contentPath, err)
	}

	base := filepath.Dir(contentPath)
	for i := range records {
		if p := records[i].ImgPath; p != "" && !filepath.IsAbs(p) {
			records[i].ImgPath = filepath.Join(base, filepath.FromSlash(p))
		}
	}

	return &Result{Dir: dir, Records: records}, nil
}

// ParseTableBody extracts the cell grid from an HTML table body as returned
// by the extraction service. Rows are <tr> elements, cells are <td> or <th>.
// Cell text is the concatenated text content, trimmed. Returns nil when the
// markup contains no rows.
func ParseTableBody(body string) [][]string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var grid [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, textContent(c))
				}
			}
			grid = append(grid, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return grid
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := textContent(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
