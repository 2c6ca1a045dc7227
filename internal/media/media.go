// Package media stores uploaded resume assets and inspects documents.
package media

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind is an upload category.
type Kind string

const (
	Photo Kind = "photo"
	PDF   Kind = "pdf"
	DOCX  Kind = "docx"
)

const excerptLength = 200

// ErrTooLarge is returned when an upload exceeds the size limit.
var ErrTooLarge = errors.New("file exceeds the upload size limit")

// ErrUnsupported is returned for an unknown kind or a mismatched extension.
var ErrUnsupported = errors.New("unsupported file type")

//nolint:gochecknoglobals // upload kind table
var kinds = map[Kind]struct {
	dir        string
	extensions []string
}{
	Photo: {dir: "photos", extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}},
	PDF:   {dir: "pdfs", extensions: []string{".pdf"}},
	DOCX:  {dir: "documents", extensions: []string{".docx"}},
}

// ParseKind validates an upload kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	if _, ok := kinds[k]; !ok {
		return "", errors.Wrapf(ErrUnsupported, "unknown upload type %q", s)
	}
	return k, nil
}

// Asset describes a stored upload.
type Asset struct {
	Kind       Kind   `json:"kind"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	Pages      int    `json:"pages,omitempty"`
	Paragraphs int    `json:"paragraphs,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
}

// Library saves uploads under Dir and serves them from URLPrefix.
type Library struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

// Save stores r as a new asset of kind k. Documents are inspected and
// rejected when they cannot be read.
func (l *Library) Save(k Kind, filename string, r io.Reader) (asset Asset, err error) {
	layout, ok := kinds[k]
	if !ok {
		return asset, ErrUnsupported
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !contains(layout.extensions, ext) {
		return asset, errors.Wrapf(ErrUnsupported, "%s is not a valid %s file", filepath.Base(filename), k)
	}

	dir := filepath.Join(l.Dir, layout.dir)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return asset, errors.Wrapf(err, "failed to create media directory: %s", dir)
	}

	stored := uuid.NewString() + ext
	dest := filepath.Join(dir, stored)

	var size int64
	size, err = writeLimited(dest, r, l.MaxBytes)
	if err != nil {
		os.Remove(dest)
		return asset, err
	}

	asset = Asset{
		Kind: k,
		Name: filepath.Base(filename),
		URL:  path.Join("/", l.URLPrefix, layout.dir, stored),
		Size: size,
	}

	switch k {
	case PDF:
		asset.Pages, asset.Excerpt, err = InspectPDF(dest)
	case DOCX:
		asset.Paragraphs, asset.Excerpt, err = InspectDOCX(dest)
	}
	if err != nil {
		os.Remove(dest)
		return Asset{}, err
	}
	return asset, nil
}

func writeLimited(dest string, r io.Reader, limit int64) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create file: %s", dest)
	}
	defer f.Close()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return n, errors.Wrap(err, "failed to write upload")
	}
	if limit > 0 && n > limit {
		return n, ErrTooLarge
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// excerpt collapses whitespace and cuts text to excerptLength runes.
func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}
	return string(runes[:excerptLength]) + "…"
}
