// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package style derives the run's font and color configuration from a
// presentation template. Extraction is best-effort: a missing or unreadable
// template yields the brand defaults, never an error. See
// docs/ARCHITECTURE § Style Resolution.
package style

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// defaultContentTemplate is the template file consulted for content-slide
// styling when the config does not name one.
const defaultContentTemplate = "non-title-slide.pptx"

// placeholderCategory is the closed set of placeholder roles the extractor
// distinguishes. Every placeholder type maps to exactly one category.
type placeholderCategory int

const (
	categoryOther placeholderCategory = iota
	categoryTitle
	categoryBody
)

// categoryOf maps an OOXML placeholder type attribute to its category. An
// absent type attribute means a body placeholder.
func categoryOf(phType string) placeholderCategory {
	switch phType {
	case "title", "ctrTitle":
		return categoryTitle
	case "", "body", "subTitle", "ftr":
		return categoryBody
	default:
		return categoryOther
	}
}

// Extract resolves the style configuration from the template directory. The
// first non-empty run in a title placeholder sets the title font; the first
// non-empty run in a body placeholder sets the body font. Later matches of
// the same category are ignored. Any failure falls back to defaults with a
// notice on the status writer.
func Extract(cfg types.TemplateConfig, out io.Writer) types.StyleConfig {
	if cfg.Dir == "" {
		return types.DefaultStyle()
	}
	name := cfg.ContentTemplate
	if name == "" {
		name = defaultContentTemplate
	}
	templatePath := filepath.Join(cfg.Dir, name)

	resolved, err := extractFromTemplate(templatePath)
	if err != nil {
		fmt.Fprintf(out, "defaulted: style (template %s: %v)\n", templatePath, err)
		return types.DefaultStyle()
	}
	fmt.Fprintf(out, "resolved: style (template %s, title %s, body %s)\n",
		templatePath, resolved.Title.Name, resolved.Body.Name)
	return resolved
}

// Minimal projections of the slide XML parts. Namespaces are ignored; only
// local names matter for placeholder and run-property discovery.
type slideXML struct {
	Shapes []shapeXML `xml:"cSld>spTree>sp"`
}

type shapeXML struct {
	Placeholder *placeholderXML `xml:"nvSpPr>nvPr>ph"`
	Paragraphs  []paragraphXML  `xml:"txBody>p"`
}

type placeholderXML struct {
	Type string `xml:"type,attr"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Props *runPropsXML `xml:"rPr"`
	Text  string       `xml:"t"`
}

type runPropsXML struct {
	Bold  string        `xml:"b,attr"`
	Latin *typefaceXML  `xml:"latin"`
	Fill  *solidFillXML `xml:"solidFill"`
}

type typefaceXML struct {
	Typeface string `xml:"typeface,attr"`
}

type solidFillXML struct {
	Color *srgbClrXML `xml:"srgbClr"`
}

type srgbClrXML struct {
	Val string `xml:"val,attr"`
}

func extractFromTemplate(templatePath string) (types.StyleConfig, error) {
	zr, err := zip.OpenReader(templatePath)
	if err != nil {
		return types.StyleConfig{}, fmt.Errorf("opening template: %w", err)
	}
	defer zr.Close()

	var slideParts []*zip.File
	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if dir == "ppt/slides/" && strings.HasPrefix(base, "slide") && strings.HasSuffix(base, ".xml") {
			slideParts = append(slideParts, f)
		}
	}
	sort.Slice(slideParts, func(i, j int) bool { return slideParts[i].Name < slideParts[j].Name })
	if len(slideParts) == 0 {
		return types.StyleConfig{}, fmt.Errorf("template has no slide parts")
	}

	resolved := types.DefaultStyle()
	resolved.Source = templatePath
	titleSet, bodySet := false, false

	for _, part := range slideParts {
		if titleSet && bodySet {
			break
		}
		slide, err := readSlide(part)
		if err != nil {
			return types.StyleConfig{}, err
		}

		for _, shape := range slide.Shapes {
			if shape.Placeholder == nil {
				continue
			}
			category := categoryOf(shape.Placeholder.Type)
			if category == categoryOther {
				continue
			}

			font, ok := firstStyledRun(shape.Paragraphs)
			if !ok {
				continue
			}

			switch category {
			case categoryTitle:
				if !titleSet {
					resolved.Title = font
					titleSet = true
				}
			case categoryBody:
				if !bodySet {
					resolved.Body = font
					bodySet = true
				}
			}
		}
	}

	return resolved, nil
}

func readSlide(part *zip.File) (*slideXML, error) {
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", part.Name, err)
	}
	defer rc.Close()

	var slide slideXML
	if err := xml.NewDecoder(rc).Decode(&slide); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", part.Name, err)
	}
	return &slide, nil
}

// firstStyledRun finds the first run with both text and a named typeface.
func firstStyledRun(paragraphs []paragraphXML) (types.FontStyle, bool) {
	for _, p := range paragraphs {
		for _, r := range p.Runs {
			if strings.TrimSpace(r.Text) == "" || r.Props == nil || r.Props.Latin == nil {
				continue
			}
			name := r.Props.Latin.Typeface
			if name == "" {
				continue
			}
			font := types.FontStyle{
				Name:         name,
				FallbackName: types.DefaultFallbackFont,
				Bold:         r.Props.Bold == "1" || r.Props.Bold == "true",
			}
			if r.Props.Fill != nil && r.Props.Fill.Color != nil {
				font.Color = parseColor(r.Props.Fill.Color.Val)
			}
			return font, true
		}
	}
	return types.FontStyle{}, false
}

// parseColor converts a 6-hex-digit color string to an RGB value. Anything
// else, including shorthand or named colors, resolves to no color override.
func parseColor(raw string) *types.RGB {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil
	}
	return &types.RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}
