package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted text of one PDF page. Numbers start at 1.
type Page struct {
	Number int
	Text   string
}

// ExtractPages pulls the text out of every page of a PDF. Pages that
// cannot be read are skipped rather than failing the whole document.
// The underlying parser panics on some malformed files, so the panics
// are turned into errors here.
func ExtractPages(data []byte) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("could not parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("could not open pdf: %v", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if text, ok := pageText(reader, i); ok {
			pages = append(pages, Page{Number: i, Text: text})
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf has no readable pages")
	}

	return pages, nil
}

func pageText(reader *pdf.Reader, number int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		return "", false
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", false
	}

	var b strings.Builder
	for _, row := range rows {
		words := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			words = append(words, word.S)
		}
		b.WriteString(strings.Join(words, " "))
		b.WriteString("\n")
	}

	return b.String(), true
}

// JoinPages flattens pages into one string with page markers, the form
// consumed by the analysis prompts.
func JoinPages(pages []Page) string {
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s", p.Number, p.Text)
	}
	return b.String()
}
