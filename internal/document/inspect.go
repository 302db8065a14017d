package document

import (
	"fmt"
	"os"
	"strings"

	"rsc.io/pdf"
)

// PageInfo describes one page of a PDF.
type PageInfo struct {
	// Number is the 1-based page number.
	Number int `json:"number"`

	// Width and Height are the MediaBox size in points (1/72 inch).
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Text is the page's text layer with whitespace collapsed. Empty for
	// scanned pages or when the content stream cannot be decoded.
	Text string `json:"-"`
}

// Info is the structural summary of a PDF.
type Info struct {
	Path     string     `json:"path"`
	NumPages int        `json:"num_pages"`
	Pages    []PageInfo `json:"pages"`
}

// Inspect reads the page count, page sizes and text layer of a PDF.
func Inspect(path string) (info *Info, err error) {
	// rsc.io/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("failed to read pdf %s: %v", path, r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}

	r, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf %s: %w", path, err)
	}

	n := r.NumPage()
	info = &Info{Path: path, NumPages: n, Pages: make([]PageInfo, 0, n)}
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		w, h := mediaBox(page.V)
		info.Pages = append(info.Pages, PageInfo{
			Number: i,
			Width:  w,
			Height: h,
			Text:   pageText(page),
		})
	}
	return info, nil
}

// mediaBox returns the page size, following the Parent chain for inherited boxes.
func mediaBox(v pdf.Value) (width, height float64) {
	for ; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(2).Float64() - box.Index(0).Float64(),
				box.Index(3).Float64() - box.Index(1).Float64()
		}
	}
	return 0, 0
}

// pageText extracts and normalizes the text of a page. Content streams that
// fail to decode yield an empty string.
func pageText(page pdf.Page) (text string) {
	if page.V.IsNull() {
		return ""
	}
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	var b strings.Builder
	for _, t := range page.Content().Text {
		b.WriteString(t.S)
	}
	return normalizeText(b.String())
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TextChangedPages returns the 1-based page numbers whose text layer differs
// between a and b. A page present in only one document counts as changed when
// it carries any text.
func TextChangedPages(a, b *Info) []int {
	n := max(len(a.Pages), len(b.Pages))
	changed := make([]int, 0)
	for i := 0; i < n; i++ {
		var ta, tb string
		if i < len(a.Pages) {
			ta = a.Pages[i].Text
		}
		if i < len(b.Pages) {
			tb = b.Pages[i].Text
		}
		if ta != tb {
			changed = append(changed, i+1)
		}
	}
	return changed
}
