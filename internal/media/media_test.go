package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("PDF")
	require.NoError(t, err)
	assert.Equal(t, PDF, k)

	_, err = ParseKind("exe")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestSavePhoto(t *testing.T) {
	lib := &Library{Dir: t.TempDir(), URLPrefix: "media", MaxBytes: 1024}

	asset, err := lib.Save(Photo, "me.PNG", strings.NewReader("not really a png"))
	require.NoError(t, err)
	assert.Equal(t, "me.PNG", asset.Name)
	assert.Equal(t, int64(16), asset.Size)
	assert.True(t, strings.HasPrefix(asset.URL, "/media/photos/"))
	assert.True(t, strings.HasSuffix(asset.URL, ".png"))

	stored := filepath.Join(lib.Dir, "photos", filepath.Base(asset.URL))
	_, err = os.Stat(stored)
	assert.NoError(t, err)
}

func TestSaveRejects(t *testing.T) {
	lib := &Library{Dir: t.TempDir(), URLPrefix: "media", MaxBytes: 8}

	_, err := lib.Save(Photo, "script.sh", strings.NewReader("x"))
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = lib.Save(Photo, "big.jpg", strings.NewReader("123456789"))
	assert.True(t, errors.Is(err, ErrTooLarge))

	entries, err := os.ReadDir(filepath.Join(lib.Dir, "photos"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsUnreadableDocuments(t *testing.T) {
	lib := &Library{Dir: t.TempDir(), URLPrefix: "media"}

	_, err := lib.Save(PDF, "cv.pdf", strings.NewReader("plain text"))
	assert.Error(t, err)

	_, err = lib.Save(DOCX, "cv.docx", strings.NewReader("plain text"))
	assert.Error(t, err)
}

func TestSaveDOCX(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Jane Doe")
	w.AddParagraph().AddText("Backend engineer")
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	lib := &Library{Dir: t.TempDir(), URLPrefix: "media"}
	asset, err := lib.Save(DOCX, "cv.docx", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, asset.Paragraphs)
	assert.Equal(t, "Jane Doe Backend engineer", asset.Excerpt)
	assert.True(t, strings.HasPrefix(asset.URL, "/media/documents/"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", excerpt("  a\n b\t\tc "))
	long := excerpt(strings.Repeat("word ", 100))
	assert.Equal(t, excerptLength+1, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}
