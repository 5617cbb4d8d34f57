// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble writes the final editable presentation. Each page becomes
// one slide: the clean (or degraded) background as a full-bleed picture,
// with text boxes, tables, and images positioned on top of it from the
// decomposed element tree. See docs/ARCHITECTURE § Assembly.
package assemble

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// Slide canvas in EMU, 16:9.
const (
	slideCX = 12192000
	slideCY = 6858000
)

// Font size bounds in hundredths of a point.
const (
	minFontSize = 800
	maxFontSize = 5400
)

// transform maps page-pixel coordinates onto the slide canvas.
type transform struct {
	scaleX float64
	scaleY float64
}

func newTransform(page types.Page) transform {
	return transform{
		scaleX: float64(slideCX) / float64(page.Width),
		scaleY: float64(slideCY) / float64(page.Height),
	}
}

// emu converts a pixel box to EMU offsets and extents.
func (t transform) emu(b types.BBox) (x, y, cx, cy int64) {
	x = int64(b.X0 * t.scaleX)
	y = int64(b.Y0 * t.scaleY)
	cx = int64(b.Width() * t.scaleX)
	cy = int64(b.Height() * t.scaleY)
	if cx < 1 {
		cx = 1
	}
	if cy < 1 {
		cy = 1
	}
	return x, y, cx, cy
}

// fontSize estimates the run size in hundredths of a point from the text
// box height. Single-line boxes dominate slide content, so 70% of the box
// height is a workable estimate.
func (t transform) fontSize(b types.BBox) int {
	heightPt := b.Height() * t.scaleY / 12700
	size := int(heightPt * 0.7 * 100)
	if size < minFontSize {
		size = minFontSize
	}
	if size > maxFontSize {
		size = maxFontSize
	}
	return size
}

// Write assembles the presentation file at outPath from the per-page
// results, in page order.
func Write(outPath string, images []types.EditableImage, style types.StyleConfig) error {
	if len(images) == 0 {
		return fmt.Errorf("no pages to assemble")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if err := writeParts(zw, images, style); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", outPath, err)
	}
	return nil
}

func writeParts(zw *zip.Writer, images []types.EditableImage, style types.StyleConfig) error {
	n := len(images)
	static := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(n)},
		{"_rels/.rels", rootRelsXML()},
		{"docProps/core.xml", corePropsXML()},
		{"docProps/app.xml", appPropsXML(n)},
		{"ppt/presentation.xml", presentationXML(n)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(n)},
		{"ppt/presProps.xml", presPropsXML()},
		{"ppt/viewProps.xml", viewPropsXML()},
		{"ppt/theme/theme1.xml", themeXML(style)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML()},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML()},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML()},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML()},
	}
	for _, part := range static {
		if err := writeText(zw, part.name, part.content); err != nil {
			return err
		}
	}

	for i, img := range images {
		if err := writeSlide(zw, i+1, img, style); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
	}
	return nil
}

// writeSlide emits the slide part, its relationships, and its media. The
// background is rId2; element images get rId3 and up.
func writeSlide(zw *zip.Writer, num int, img types.EditableImage, style types.StyleConfig) error {
	t := newTransform(img.Page)

	bgName := fmt.Sprintf("ppt/media/slide%d_bg.png", num)
	if err := copyFile(zw, bgName, img.BackgroundPath); err != nil {
		return err
	}

	rels := []relEntry{
		{id: "rId1", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout", target: "../slideLayouts/slideLayout1.xml"},
		{id: "rId2", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image", target: "../" + strings.TrimPrefix(bgName, "ppt/")},
	}

	var shapes strings.Builder
	shapes.WriteString(backgroundPicXML())

	shapeID := 3
	nextRel := 3
	var walk func(elements []*types.Element) error
	walk = func(elements []*types.Element) error {
		for _, el := range elements {
			switch el.Kind {
			case types.ElementText:
				shapes.WriteString(textShapeXML(shapeID, el, t, style))
			case types.ElementTable:
				if len(el.Cells) > 0 {
					shapes.WriteString(tableFrameXML(shapeID, el, t, style))
				}
			case types.ElementImage:
				// Image elements with decomposed children contribute only
				// their children; the region itself stays in the background.
				if len(el.Children) == 0 && el.ImagePath != "" {
					relID := fmt.Sprintf("rId%d", nextRel)
					mediaName := fmt.Sprintf("ppt/media/slide%d_img%d.png", num, nextRel)
					if err := copyFile(zw, mediaName, el.ImagePath); err != nil {
						return err
					}
					rels = append(rels, relEntry{
						id:     relID,
						typ:    "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image",
						target: "../" + strings.TrimPrefix(mediaName, "ppt/"),
					})
					shapes.WriteString(picXML(shapeID, relID, el.BBox, t))
					nextRel++
				}
			}
			shapeID++
			if err := walk(el.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(img.Elements); err != nil {
		return err
	}

	if err := writeText(zw, fmt.Sprintf("ppt/slides/slide%d.xml", num), slideXML(shapes.String())); err != nil {
		return err
	}
	return writeText(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), relsXML(rels))
}

func writeText(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating zip entry %s: %w", name, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("writing zip entry %s: %w", name, err)
	}
	return nil
}

func copyFile(zw *zip.Writer, name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening media %s: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("writing zip entry %s: %w", name, err)
	}
	return nil
}

func escape(s string) string {
	var buf strings.Builder
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// --- shape builders ---

func backgroundPicXML() string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="2" name="Background"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>` +
		fmt.Sprintf(`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, slideCX, slideCY) +
		`</p:pic>`
}

// runPropsXML renders the run properties for a font role at a given size.
func runPropsXML(font types.FontStyle, size int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<a:rPr lang="en-US" sz="%d"`, size)
	if font.Bold {
		b.WriteString(` b="1"`)
	}
	if font.Italic {
		b.WriteString(` i="1"`)
	}
	b.WriteString(`>`)
	if font.Color != nil {
		fmt.Fprintf(&b, `<a:solidFill><a:srgbClr val="%02X%02X%02X"/></a:solidFill>`,
			font.Color.R, font.Color.G, font.Color.B)
	}
	fmt.Fprintf(&b, `<a:latin typeface="%s"/>`, escape(font.Name))
	if font.FallbackName != "" {
		fmt.Fprintf(&b, `<a:cs typeface="%s"/>`, escape(font.FallbackName))
	}
	b.WriteString(`</a:rPr>`)
	return b.String()
}

// fontFor picks the title or body font based on the element's text level.
func fontFor(el *types.Element, style types.StyleConfig) types.FontStyle {
	if el.TextLevel == 1 {
		return style.Title
	}
	return style.Body
}

func textShapeXML(id int, el *types.Element, t transform, style types.StyleConfig) string {
	x, y, cx, cy := t.emu(el.BBox)
	font := fontFor(el, style)
	size := t.fontSize(el.BBox)

	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, cx, cy)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square" anchor="t"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	for _, line := range strings.Split(el.Text, "\n") {
		b.WriteString(`<a:p><a:r>`)
		b.WriteString(runPropsXML(font, size))
		fmt.Fprintf(&b, `<a:t>%s</a:t></a:r></a:p>`, escape(line))
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func picXML(id int, relID string, box types.BBox, t transform) string {
	x, y, cx, cy := t.emu(box)
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, id, id) +
		fmt.Sprintf(`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, relID) +
		fmt.Sprintf(`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, cx, cy) +
		`</p:pic>`
}

// tableFrameXML renders a table element as a graphic frame with a uniform
// column grid derived from the cell set.
func tableFrameXML(id int, el *types.Element, t transform, style types.StyleConfig) string {
	rows, cols := 0, 0
	for _, c := range el.Cells {
		if c.Row+1 > rows {
			rows = c.Row + 1
		}
		if c.Col+1 > cols {
			cols = c.Col + 1
		}
	}
	if rows == 0 || cols == 0 {
		return ""
	}

	x, y, cx, cy := t.emu(el.BBox)
	colW := cx / int64(cols)
	rowH := cy / int64(rows)

	text := make([][]string, rows)
	for i := range text {
		text[i] = make([]string, cols)
	}
	for _, c := range el.Cells {
		text[c.Row][c.Col] = c.Text
	}

	cellSize := t.fontSize(types.NewBBox(0, 0, 1, el.BBox.Height()/float64(rows)))

	var b strings.Builder
	fmt.Fprintf(&b, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`, id, id)
	fmt.Fprintf(&b, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, x, y, cx, cy)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblPr firstRow="1" bandRow="1"/><a:tblGrid>`)
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&b, `<a:gridCol w="%d"/>`, colW)
	}
	b.WriteString(`</a:tblGrid>`)
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&b, `<a:tr h="%d">`, rowH)
		for c := 0; c < cols; c++ {
			b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r>`)
			b.WriteString(runPropsXML(style.Body, cellSize))
			fmt.Fprintf(&b, `<a:t>%s</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`, escape(text[r][c]))
		}
		b.WriteString(`</a:tr>`)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return b.String()
}

// --- package parts ---

type relEntry struct {
	id, typ, target string
}

func relsXML(rels []relEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func contentTypesXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/viewProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func rootRelsXML() string {
	return relsXML([]relEntry{
		{id: "rId1", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument", target: "ppt/presentation.xml"},
		{id: "rId2", typ: "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", target: "docProps/core.xml"},
		{id: "rId3", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties", target: "docProps/app.xml"},
	})
}

func corePropsXML() string {
	now := time.Now().UTC().Format(time.RFC3339)
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title/>` +
		`<dc:creator>pdf2pptx</dc:creator>` +
		`<cp:lastModifiedBy>pdf2pptx</cp:lastModifiedBy>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + now + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + now + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appPropsXML(slideCount int) string {
	var titles strings.Builder
	fmt.Fprintf(&titles, `<vt:vector size="%d" baseType="lpstr">`, slideCount)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&titles, `<vt:lpstr>Slide %d</vt:lpstr>`, i)
	}
	titles.WriteString(`</vt:vector>`)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`)
	b.WriteString(`<Application>pdf2pptx</Application>`)
	b.WriteString(`<PresentationFormat>On-screen Show (16:9)</PresentationFormat>`)
	fmt.Fprintf(&b, `<Slides>%d</Slides>`, slideCount)
	b.WriteString(`<Notes>0</Notes><HiddenSlides>0</HiddenSlides><MMClips>0</MMClips><ScaleCrop>false</ScaleCrop>`)
	b.WriteString(`<HeadingPairs><vt:vector size="2" baseType="variant"><vt:variant><vt:lpstr>Slides</vt:lpstr></vt:variant><vt:variant><vt:i4>`)
	fmt.Fprintf(&b, `%d`, slideCount)
	b.WriteString(`</vt:i4></vt:variant></vt:vector></HeadingPairs>`)
	b.WriteString(`<TitlesOfParts>`)
	b.WriteString(titles.String())
	b.WriteString(`</TitlesOfParts>`)
	b.WriteString(`<AppVersion>16.0000</AppVersion>`)
	b.WriteString(`</Properties>`)
	return b.String()
}

func presentationXML(slideCount int) string {
	var slides strings.Builder
	slides.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slideCount; i++ {
		fmt.Fprintf(&slides, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 5+i)
	}
	slides.WriteString(`</p:sldIdLst>`)

	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" saveSubsetFonts="1" autoCompressPictures="0">` +
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
		slides.String() +
		fmt.Sprintf(`<p:sldSz cx="%d" cy="%d" type="screen16x9"/>`, slideCX, slideCY) +
		`<p:notesSz cx="6858000" cy="9144000"/>` +
		`<p:defaultTextStyle/>` +
		`</p:presentation>`
}

func presentationRelsXML(slideCount int) string {
	rels := []relEntry{
		{id: "rId1", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster", target: "slideMasters/slideMaster1.xml"},
		{id: "rId2", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps", target: "presProps.xml"},
		{id: "rId3", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps", target: "viewProps.xml"},
		{id: "rId4", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme", target: "theme/theme1.xml"},
	}
	for i := 0; i < slideCount; i++ {
		rels = append(rels, relEntry{
			id:     fmt.Sprintf("rId%d", 5+i),
			typ:    "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide",
			target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
	}
	return relsXML(rels)
}

func presPropsXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:presentationPr xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`
}

func viewPropsXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:viewPr xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`
}

func slideXML(shapes string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr/>` +
		shapes +
		`</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sld>`
}

func slideMasterXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>` +
		`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
		`</p:sldMaster>`
}

func slideMasterRelsXML() string {
	return relsXML([]relEntry{
		{id: "rId1", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout", target: "../slideLayouts/slideLayout1.xml"},
		{id: "rId2", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme", target: "../theme/theme1.xml"},
	})
}

func slideLayoutXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" type="blank">` +
		`<p:cSld name="Blank"><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sldLayout>`
}

func slideLayoutRelsXML() string {
	return relsXML([]relEntry{
		{id: "rId1", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster", target: "../slideMasters/slideMaster1.xml"},
	})
}

// themeXML declares the minor and major font families from the resolved
// style so fallback rendering stays on brand.
func themeXML(style types.StyleConfig) string {
	major := escape(style.Title.Name)
	minor := escape(style.Body.Name)
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="pdf2pptx">` +
		`<a:themeElements>` +
		`<a:clrScheme name="Default">` +
		`<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
		`<a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
		`<a:accent1><a:srgbClr val="01A982"/></a:accent1><a:accent2><a:srgbClr val="7630EA"/></a:accent2>` +
		`<a:accent3><a:srgbClr val="C140FF"/></a:accent3><a:accent4><a:srgbClr val="FEC901"/></a:accent4>` +
		`<a:accent5><a:srgbClr val="FF8300"/></a:accent5><a:accent6><a:srgbClr val="0D5265"/></a:accent6>` +
		`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
		`</a:clrScheme>` +
		`<a:fontScheme name="Default">` +
		`<a:majorFont><a:latin typeface="` + major + `"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
		`<a:minorFont><a:latin typeface="` + minor + `"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
		`</a:fontScheme>` +
		`<a:fmtScheme name="Default">` +
		`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
		`<a:lnStyleLst><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
		`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
		`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
		`</a:fmtScheme>` +
		`</a:themeElements>` +
		`</a:theme>`
}
