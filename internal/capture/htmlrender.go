package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Encryptioner/html-to-pdf-generator-sub001/internal/parser/css"
	htmlparser "github.com/Encryptioner/html-to-pdf-generator-sub001/internal/parser/html"
)

// Fixed text metrics of the built-in renderer. Everything is drawn with
// basicfont.Face7x13 so identical input always yields identical pixels.
const (
	glyphWidthPx  = 7
	lineHeightPx  = 16
	baselinePx    = 12
	bodyPadPx     = 16
	cellPadPx     = 4
	listIndentPx  = 24
	defaultImgPx  = 160
	ruleHeightPx  = 2
	borderWidthPx = 1
)

// HTMLRenderer is the built-in capture adapter. It lays out a small block
// subset of HTML top to bottom and rasterizes it onto a Surface, freezing
// element geometry as it goes. It exists so generation works end to end
// without an external rendering engine; callers needing full fidelity can
// substitute any Renderer.
type HTMLRenderer struct {
	// Stylesheet is optional extra CSS applied after document styles
	Stylesheet string
	Debug      bool
}

// NewHTMLRenderer creates a renderer with no extra stylesheet
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// drawOp paints one element at its final position. Ops are recorded during
// measurement and executed once the surface has been allocated.
type drawOp func(img *image.RGBA)

type layoutState struct {
	sheet *css.Stylesheet
	ops   []drawOp
}

// Render implements the Renderer contract.
func (r *HTMLRenderer) Render(ctx context.Context, content string, targetWidthPx int) (*Capture, error) {
	if targetWidthPx < 2*bodyPadPx+glyphWidthPx {
		return nil, fmt.Errorf("target width %dpx too narrow", targetWidthPx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := htmlparser.NewParser().ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := doc.Body()
	if body == nil {
		return nil, fmt.Errorf("document has no content")
	}

	st := &layoutState{sheet: r.collectStyles(doc)}

	root := &Node{Tag: "body"}
	y := 0
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		child, next := r.layoutNode(c, bodyPadPx, y, targetWidthPx-2*bodyPadPx, st)
		if child == nil {
			continue
		}
		root.Children = append(root.Children, child)
		y = next
	}
	root.HeightPx = y
	if root.HeightPx < 1 {
		root.HeightPx = 1
	}

	surface := NewSurface(targetWidthPx, root.HeightPx)
	img := surface.Image()
	for _, op := range st.ops {
		op(img)
	}

	if r.Debug {
		fmt.Printf("Captured %dx%dpx surface, %d top-level blocks\n",
			surface.WidthPx, surface.HeightPx, len(root.Children))
	}
	return &Capture{Surface: surface, Root: root}, nil
}

// collectStyles gathers <style> blocks plus the renderer's extra stylesheet
func (r *HTMLRenderer) collectStyles(doc *htmlparser.Document) *css.Stylesheet {
	var b strings.Builder
	for _, styleEl := range doc.Root.FindAll("style") {
		b.WriteString(styleEl.Text())
		b.WriteString("\n")
	}
	b.WriteString(r.Stylesheet)
	sheet, err := css.ParseString(b.String())
	if err != nil {
		return &css.Stylesheet{}
	}
	return sheet
}

// layoutNode lays out one node at (x, y) within width pixels and returns its
// geometry plus the y offset following it. A nil node means nothing was laid
// out (whitespace text, comments, unsupported elements).
func (r *HTMLRenderer) layoutNode(el *htmlparser.Node, x, y, width int, st *layoutState) (*Node, int) {
	tag := el.Tag()
	if tag == "" {
		// Bare text between block elements becomes an implicit paragraph.
		if text := strings.Join(strings.Fields(el.Data), " "); text != "" && el.Parent != nil {
			return r.layoutParagraph("p", text, x, y, width, Directives{}, st)
		}
		return nil, y
	}

	decls := r.computedDecls(el, st.sheet)
	dir := directivesFrom(el, decls)

	switch tag {
	case "script", "head", "title", "meta", "link", "style":
		return nil, y
	case "br":
		return &Node{Tag: tag, TopPx: y, HeightPx: lineHeightPx}, y + lineHeightPx
	case "hr":
		return r.layoutRule(y, x, width, dir, st)
	case "img":
		return r.layoutImage(el, x, y, width, dir, st)
	case "table":
		return r.layoutTable(el, x, y, width, dir, st)
	case "ul", "ol":
		return r.layoutList(el, tag, x, y, width, dir, st)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return r.layoutHeading(el, tag, x, y, width, dir, st)
	}

	if hasBlockChildren(el) {
		return r.layoutContainer(el, tag, x, y, width, dir, st)
	}
	text := el.Text()
	if text == "" {
		return &Node{Tag: tag, TopPx: y, Directives: dir}, y
	}
	return r.layoutParagraph(tag, text, x, y, width, dir, st)
}

// layoutContainer stacks the element's children vertically
func (r *HTMLRenderer) layoutContainer(el *htmlparser.Node, tag string, x, y, width int, dir Directives, st *layoutState) (*Node, int) {
	node := &Node{Tag: tag, TopPx: y, Directives: dir}
	cur := y
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		child, next := r.layoutNode(c, x, cur, width, st)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, child)
		cur = next
	}
	node.HeightPx = cur - y
	return node, cur
}

// layoutParagraph wraps text to the available width and records a draw op
func (r *HTMLRenderer) layoutParagraph(tag, text string, x, y, width int, dir Directives, st *layoutState) (*Node, int) {
	marginTop, marginBottom := blockMargins(tag)
	lines := wrapText(text, width/glyphWidthPx)
	top := y + marginTop
	height := len(lines) * lineHeightPx

	textX, textY := x, top
	st.ops = append(st.ops, func(img *image.RGBA) {
		drawLines(img, lines, textX, textY, false)
	})

	node := &Node{Tag: tag, TopPx: top, HeightPx: height, Directives: dir}
	return node, top + height + marginBottom
}

// layoutHeading draws the heading text in faux bold with an underline rule
// for the top two levels
func (r *HTMLRenderer) layoutHeading(el *htmlparser.Node, tag string, x, y, width int, dir Directives, st *layoutState) (*Node, int) {
	level := int(tag[1] - '0')
	marginTop, marginBottom := blockMargins(tag)
	lines := wrapText(el.Text(), width/glyphWidthPx)
	top := y + marginTop
	height := len(lines) * lineHeightPx
	underline := level <= 2
	if underline {
		height += ruleHeightPx + 2
	}

	textX, textY, ruleWidth := x, top, width
	st.ops = append(st.ops, func(img *image.RGBA) {
		drawLines(img, lines, textX, textY, true)
		if underline {
			fillRect(img, textX, textY+len(lines)*lineHeightPx+2, ruleWidth, ruleHeightPx, color.RGBA{64, 64, 64, 255})
		}
	})

	node := &Node{Tag: tag, TopPx: top, HeightPx: height, HeadingLevel: level, Directives: dir}
	return node, top + height + marginBottom
}

// layoutRule draws a horizontal rule
func (r *HTMLRenderer) layoutRule(y, x, width int, dir Directives, st *layoutState) (*Node, int) {
	top := y + 8
	ruleX, ruleY, ruleW := x, top, width
	st.ops = append(st.ops, func(img *image.RGBA) {
		fillRect(img, ruleX, ruleY, ruleW, ruleHeightPx, color.RGBA{0, 0, 0, 255})
	})
	node := &Node{Tag: "hr", TopPx: top, HeightPx: ruleHeightPx, Directives: dir}
	return node, top + ruleHeightPx + 8
}

// layoutList stacks list items with a marker gutter
func (r *HTMLRenderer) layoutList(el *htmlparser.Node, tag string, x, y, width int, dir Directives, st *layoutState) (*Node, int) {
	node := &Node{Tag: tag, TopPx: y, Directives: dir}
	cur := y + 4
	counter := 0
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if !c.IsElement("li") {
			continue
		}
		counter++
		marker := "•"
		if tag == "ol" {
			marker = strconv.Itoa(counter) + "."
		}
		child, next := r.layoutNode(c, x+listIndentPx, cur, width-listIndentPx, st)
		if child == nil {
			continue
		}
		markerX, markerY, m := x, child.TopPx, marker
		st.ops = append(st.ops, func(img *image.RGBA) {
			drawLines(img, []string{m}, markerX, markerY, false)
		})
		node.Children = append(node.Children, child)
		cur = next
	}
	cur += 4
	node.HeightPx = cur - y
	return node, cur
}

// layoutImage decodes data-URL images and scales them to fit; other sources
// are drawn as a labeled placeholder so geometry stays deterministic offline
func (r *HTMLRenderer) layoutImage(el *htmlparser.Node, x, y, width int, dir Directives, st *layoutState) (*Node, int) {
	w := attrPx(el, "width", width)
	h := attrPx(el, "height", defaultImgPx)
	if w > width {
		h = h * width / w
		w = width
	}
	if h < 1 {
		h = 1
	}

	var decoded image.Image
	if src := el.AttrValue("src"); strings.HasPrefix(src, "data:") {
		if img, err := decodeDataURL(src); err == nil {
			decoded = img
			// Without explicit dimensions, keep the intrinsic aspect ratio.
			if el.AttrValue("width") == "" && el.AttrValue("height") == "" {
				b := img.Bounds()
				w = b.Dx()
				if w > width {
					w = width
				}
				if b.Dx() > 0 {
					h = b.Dy() * w / b.Dx()
				}
			}
		}
	}

	top := y + 4
	imgX, imgY, imgW, imgH, srcImg := x, top, w, h, decoded
	st.ops = append(st.ops, func(img *image.RGBA) {
		dst := image.Rect(imgX, imgY, imgX+imgW, imgY+imgH)
		if srcImg != nil {
			xdraw.CatmullRom.Scale(img, dst, srcImg, srcImg.Bounds(), xdraw.Over, nil)
			return
		}
		fillRect(img, imgX, imgY, imgW, imgH, color.RGBA{230, 230, 230, 255})
		strokeRect(img, imgX, imgY, imgW, imgH, color.RGBA{160, 160, 160, 255})
	})

	node := &Node{Tag: "img", TopPx: top, HeightPx: h, Directives: dir}
	return node, top + h + 4
}

// layoutTable computes row-accurate geometry and rasterizes cells with
// borders. Header rows (thead, or leading all-th rows) are measured
// separately so the segmenter can repeat them across pages.
func (r *HTMLRenderer) layoutTable(el *htmlparser.Node, x, y, width int, dir Directives, st *layoutState) (*Node, int) {
	headerRows, bodyRows := splitTableRows(el)
	if len(headerRows) == 0 && len(bodyRows) == 0 {
		return &Node{Tag: "table", TopPx: y, Directives: dir}, y
	}

	cols := 0
	for _, row := range append(append([]*htmlparser.Node{}, headerRows...), bodyRows...) {
		if n := countCells(row); n > cols {
			cols = n
		}
	}
	if cols == 0 {
		return &Node{Tag: "table", TopPx: y, Directives: dir}, y
	}
	colWidth := width / cols

	top := y + 8
	cur := top
	table := &Table{TopPx: top}

	layoutRow := func(row *htmlparser.Node, header bool) {
		cells := rowCells(row)
		maxLines := 1
		wrapped := make([][]string, len(cells))
		for i, cell := range cells {
			wrapped[i] = wrapText(cell.Text(), (colWidth-2*cellPadPx)/glyphWidthPx)
			if len(wrapped[i]) > maxLines {
				maxLines = len(wrapped[i])
			}
		}
		rowH := maxLines*lineHeightPx + 2*cellPadPx

		rowX, rowY, rowW := x, cur, colWidth*cols
		lines, isHeader := wrapped, header
		st.ops = append(st.ops, func(img *image.RGBA) {
			if isHeader {
				fillRect(img, rowX, rowY, rowW, rowH, color.RGBA{240, 240, 240, 255})
			}
			for i := range lines {
				cellX := rowX + i*colWidth
				drawLines(img, lines[i], cellX+cellPadPx, rowY+cellPadPx, isHeader)
				strokeRect(img, cellX, rowY, colWidth, rowH, color.RGBA{0, 0, 0, 255})
			}
		})
		cur += rowH
	}

	for _, row := range headerRows {
		layoutRow(row, true)
	}
	table.HeaderHeightPx = cur - top
	for _, row := range bodyRows {
		layoutRow(row, false)
		table.RowEndsPx = append(table.RowEndsPx, cur)
	}

	node := &Node{Tag: "table", TopPx: top, HeightPx: cur - top, Directives: dir, Table: table}
	return node, cur + 8
}

// computedDecls resolves stylesheet rules plus the inline style attribute
func (r *HTMLRenderer) computedDecls(el *htmlparser.Node, sheet *css.Stylesheet) []css.Declaration {
	decls := sheet.Match(el.Tag(), el.Classes())
	if inline := el.AttrValue("style"); inline != "" {
		decls = append(decls, css.ParseDeclarations(inline)...)
	}
	return decls
}

// directivesFrom maps break-related declarations and shorthand classes onto
// the node's break directives
func directivesFrom(el *htmlparser.Node, decls []css.Declaration) Directives {
	var d Directives
	if v := css.Lookup(decls, "page-break-before"); v == "always" || v == "page" {
		d.ForceBefore = true
	}
	if v := css.Lookup(decls, "break-before"); v == "always" || v == "page" {
		d.ForceBefore = true
	}
	if v := css.Lookup(decls, "page-break-after"); v == "always" || v == "page" {
		d.ForceAfter = true
	}
	if v := css.Lookup(decls, "break-after"); v == "always" || v == "page" {
		d.ForceAfter = true
	}
	if css.Lookup(decls, "page-break-inside") == "avoid" || css.Lookup(decls, "break-inside") == "avoid" {
		d.AvoidInside = true
	}
	for _, class := range el.Classes() {
		switch class {
		case "page-break":
			d.ForceBefore = true
		case "avoid-break", "keep-together":
			d.AvoidInside = true
		}
	}
	return d
}

// hasBlockChildren reports whether any child is a block-level element
func hasBlockChildren(el *htmlparser.Node) bool {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Tag() {
		case "p", "div", "section", "article", "header", "footer", "blockquote",
			"pre", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6", "hr", "img":
			return true
		}
	}
	return false
}

// splitTableRows separates header rows from body rows. Rows inside <thead>
// are headers, as are leading rows whose cells are all <th>.
func splitTableRows(table *htmlparser.Node) (header, body []*htmlparser.Node) {
	rows := table.FindAll("tr")
	inHead := func(row *htmlparser.Node) bool {
		for p := row.Parent; p != nil && p != table.Parent; p = p.Parent {
			if p.IsElement("thead") {
				return true
			}
		}
		return false
	}
	allTH := func(row *htmlparser.Node) bool {
		seen := false
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			switch c.Tag() {
			case "th":
				seen = true
			case "td":
				return false
			}
		}
		return seen
	}
	leading := true
	for _, row := range rows {
		if inHead(row) || (leading && allTH(row)) {
			header = append(header, row)
			continue
		}
		leading = false
		body = append(body, row)
	}
	return header, body
}

func rowCells(row *htmlparser.Node) []*htmlparser.Node {
	var cells []*htmlparser.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.IsElement("td") || c.IsElement("th") {
			cells = append(cells, c)
		}
	}
	return cells
}

func countCells(row *htmlparser.Node) int {
	return len(rowCells(row))
}

// blockMargins returns the vertical margins used for a block tag
func blockMargins(tag string) (top, bottom int) {
	switch tag {
	case "h1":
		return 20, 12
	case "h2":
		return 16, 10
	case "h3", "h4":
		return 12, 8
	case "h5", "h6":
		return 10, 6
	case "p", "blockquote", "pre":
		return 8, 8
	case "li":
		return 2, 2
	default:
		return 4, 4
	}
}

// attrPx parses an integer pixel attribute with a fallback
func attrPx(el *htmlparser.Node, name string, fallback int) int {
	raw := strings.TrimSuffix(strings.TrimSpace(el.AttrValue(name)), "px")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// wrapText greedily wraps text into lines of at most maxChars characters
func wrapText(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// drawLines renders wrapped lines with the fixed face; bold is simulated by
// overstriking one pixel to the right
func drawLines(img *image.RGBA, lines []string, x, y int, bold bool) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		baseline := y + i*lineHeightPx + baselinePx
		d.Dot = fixed.P(x, baseline)
		d.DrawString(line)
		if bold {
			d.Dot = fixed.P(x+1, baseline)
			d.DrawString(line)
		}
	}
}

func fillRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	b := img.Bounds()
	for yy := y; yy < y+h; yy++ {
		if yy < b.Min.Y || yy >= b.Max.Y {
			continue
		}
		for xx := x; xx < x+w; xx++ {
			if xx < b.Min.X || xx >= b.Max.X {
				continue
			}
			img.SetRGBA(xx, yy, c)
		}
	}
}

func strokeRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	fillRect(img, x, y, w, borderWidthPx, c)
	fillRect(img, x, y+h-borderWidthPx, w, borderWidthPx, c)
	fillRect(img, x, y, borderWidthPx, h, c)
	fillRect(img, x+w-borderWidthPx, y, borderWidthPx, h, c)
}

// decodeDataURL decodes a base64 data URL into an image
func decodeDataURL(src string) (image.Image, error) {
	idx := strings.Index(src, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := src[:idx], src[idx+1:]
	var raw []byte
	var err error
	if strings.Contains(meta, ";base64") {
		raw, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL: %w", err)
		}
	} else {
		raw = []byte(payload)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
