package media

import (
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// InspectPDF returns the page count and an excerpt of the first page with
// extractable text.
func InspectPDF(path string) (pages int, summary string, err error) {
	// The PDF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			pages, summary, err = 0, "", errors.Errorf("failed to read PDF: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, "", errors.Wrap(err, "failed to read PDF")
	}
	defer f.Close()

	pages = reader.NumPage()
	for i := 1; i <= pages && summary == ""; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		summary = excerpt(text)
	}
	return pages, summary, nil
}

// InspectDOCX returns the number of non-empty paragraphs and an excerpt of
// the document text.
func InspectDOCX(path string) (paragraphs int, summary string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", errors.Wrapf(err, "failed to open document: %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, "", errors.Wrap(err, "failed to stat document")
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return 0, "", errors.Wrap(err, "failed to read DOCX")
	}

	var text strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		t := paragraphText(para)
		if t == "" {
			continue
		}
		paragraphs++
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(t)
	}
	return paragraphs, excerpt(text.String()), nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
