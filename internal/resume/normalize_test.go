package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullRecord = `{
  "id": 7,
  "name": "Jane Doe",
  "location": "Kyiv",
  "date_of_birth": "1990-12-27",
  "phone": "+380000000",
  "email": "jane@example.com",
  "photo": "/media/photos/jane.jpg",
  "about": "Builds things.",
  "languages": [{"language": "Ukrainian", "level": "Native"}, {"language": "English", "level": "B2"}],
  "skills": [{"category": "Backend", "items": ["Go", "Python", ""]}],
  "skills_table": [{"skill": "Go", "level": "8/10"}],
  "experience": [{"period": "2020-2024", "title": "Engineer", "company": "Acme", "description": ["Shipped", "Led"]}],
  "resume_projects": [{"name": "Site", "description": "Portfolio", "technologies": ["Go"], "status": "live"}],
  "testimonials": [{"name": "Bob", "position": "CTO", "company": "Acme", "text": "Great", "rating": 5}],
  "video_urls": ["https://example.com/v1"],
  "pdf_files": [{"name": "cv.pdf", "url": "/media/pdfs/cv.pdf"}]
}`

func decode(t *testing.T, s string) Record {
	t.Helper()
	var r Record
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func TestNormalizeFullRecord(t *testing.T) {
	d := Normalize(decode(t, fullRecord))

	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, "Jane Doe", d.Personal.Name)
	assert.Equal(t, "/media/photos/jane.jpg", d.Personal.Photo)
	assert.Equal(t, "Builds things.", d.About)
	assert.Equal(t, []Language{{"Ukrainian", "Native"}, {"English", "B2"}}, d.Languages)
	assert.Equal(t, []SkillGroup{{Category: "Backend", Items: []string{"Go", "Python"}}}, d.Skills)
	assert.Equal(t, []SkillLevel{{Skill: "Go", Level: "8/10"}}, d.SkillLevels)
	assert.Equal(t, []string{"Shipped", "Led"}, d.Experience[0].Description)
	assert.Equal(t, "live", d.Projects[0].Status)
	assert.Equal(t, 5, d.Testimonials[0].Rating)
	assert.Equal(t, []string{"https://example.com/v1"}, d.Videos)
	assert.Equal(t, []File{{Name: "cv.pdf", URL: "/media/pdfs/cv.pdf"}}, d.PDFFiles)
}

func TestNormalizeDocumentDetails(t *testing.T) {
	d := Normalize(decode(t, `{"id": 1, "pdf_files": [
		{"name": "cv.pdf", "url": "/media/pdfs/a.pdf", "pages": 2, "excerpt": "Jane Doe"},
		{"name": "cv.docx", "url": "/media/documents/b.docx", "paragraphs": 14},
		{"name": "odd.pdf", "url": "/x", "pages": -3, "paragraphs": "many"}
	]}`))

	assert.Equal(t, []File{
		{Name: "cv.pdf", URL: "/media/pdfs/a.pdf", Pages: 2, Excerpt: "Jane Doe"},
		{Name: "cv.docx", URL: "/media/documents/b.docx", Paragraphs: 14},
		{Name: "odd.pdf", URL: "/x"},
	}, d.PDFFiles)
}

func TestNormalizeMissingLanguages(t *testing.T) {
	d := Normalize(decode(t, `{"id": 1, "name": "Jane"}`))

	assert.NotNil(t, d.Languages)
	assert.Empty(t, d.Languages)
}

func TestNormalizeMalformedLists(t *testing.T) {
	d := Normalize(decode(t, `{
		"languages": "English",
		"skills": {"category": "x"},
		"experience": 12,
		"skills_table": null,
		"resume_projects": [1, "two", {"name": "ok"}],
		"testimonials": [{"name": "A", "rating": "4"}, {"name": "B", "rating": 99}, {"name": "C", "rating": -3}],
		"video_urls": [1, "", "https://v"],
		"pdf_files": true
	}`))

	assert.Empty(t, d.Languages)
	assert.Empty(t, d.Skills)
	assert.Empty(t, d.Experience)
	assert.Empty(t, d.SkillLevels)
	assert.Empty(t, d.PDFFiles)
	assert.Equal(t, []Project{{Name: "ok", Technologies: []string{}}}, d.Projects)
	assert.Equal(t, []int{4, 5, 0}, []int{d.Testimonials[0].Rating, d.Testimonials[1].Rating, d.Testimonials[2].Rating})
	assert.Equal(t, []string{"1", "https://v"}, d.Videos)
}

func TestNormalizePlaceholders(t *testing.T) {
	d := Normalize(Record{"name": "   ", "phone": nil})

	assert.Equal(t, int64(0), d.ID)
	assert.Equal(t, MissingName, d.Personal.Name)
	assert.Equal(t, MissingLocation, d.Personal.Location)
	assert.Equal(t, MissingDateOfBirth, d.Personal.DateOfBirth)
	assert.Equal(t, MissingPhone, d.Personal.Phone)
	assert.Equal(t, MissingEmail, d.Personal.Email)
	assert.Equal(t, "", d.Personal.Photo)
	assert.Equal(t, MissingAbout, d.About)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	first, err := json.Marshal(Normalize(decode(t, fullRecord)))
	require.NoError(t, err)
	second, err := json.Marshal(Normalize(decode(t, fullRecord)))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	empty1, _ := json.Marshal(Normalize(Record{}))
	empty2, _ := json.Marshal(Normalize(Record{}))
	assert.Equal(t, empty1, empty2)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, int64(3), Record{"id": float64(3)}.ID())
	assert.Equal(t, int64(3), Record{"id": json.Number("3")}.ID())
	assert.Equal(t, int64(0), Record{"id": 2.5}.ID())
	assert.Equal(t, int64(0), Record{"id": "3"}.ID())
	assert.Equal(t, int64(0), Record{}.ID())
}

func TestSkillLevelScore(t *testing.T) {
	tests := map[string]int{
		"8/10":  8,
		" 7/10": 7,
		"10":    10,
		"high":  0,
		"":      0,
	}
	for level, want := range tests {
		assert.Equal(t, want, SkillLevel{Level: level}.Score(), level)
	}
	assert.Equal(t, 80, SkillLevel{Level: "8/10"}.Percent())
	assert.Equal(t, 100, SkillLevel{Level: "15/10"}.Percent())
}
