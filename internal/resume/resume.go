// Package resume defines the normalized resume aggregate rendered by the site
// and the coercion from loosely-typed backend records into it.
package resume

import (
	"strconv"
	"strings"
)

// Placeholders used when a scalar field is missing from the backend record.
const (
	MissingName        = "Name not specified"
	MissingLocation    = "📍 Location not specified"
	MissingDateOfBirth = "📅 Date of birth not specified"
	MissingPhone       = "📞 Phone not specified"
	MissingEmail       = "✉️ Email not specified"
	MissingAbout       = "No information provided"
)

// PersonalInfo is the header block of the resume.
type PersonalInfo struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Photo       string `json:"photo,omitempty"`
}

type Language struct {
	Language string `json:"language"`
	Level    string `json:"level"`
}

type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type Experience struct {
	Period      string   `json:"period"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description []string `json:"description"`
}

// SkillLevel is a self-assessed skill such as {"Java", "8/10"}.
type SkillLevel struct {
	Skill string `json:"skill"`
	Level string `json:"level"`
}

// Score returns the leading integer of Level, or 0.
func (s SkillLevel) Score() int {
	level := strings.TrimSpace(s.Level)
	end := 0
	for end < len(level) && level[end] >= '0' && level[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(level[:end])
	if err != nil {
		return 0
	}
	return n
}

// Percent returns Score on a ten point scale as a percentage, capped at 100.
func (s SkillLevel) Percent() int {
	p := s.Score() * 10
	if p > 100 {
		p = 100
	}
	return p
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Status       string   `json:"status"`
}

type Testimonial struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Company  string `json:"company"`
	Text     string `json:"text"`
	Rating   int    `json:"rating"`
}

// File is a downloadable document attached to the resume.
// Pages, Paragraphs and Excerpt are filled in for inspected uploads.
type File struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Pages      int    `json:"pages,omitempty"`
	Paragraphs int    `json:"paragraphs,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
}

// Data is the full aggregate shown by the site. It is replaced wholesale on
// every successful fetch.
type Data struct {
	ID           int64         `json:"id"`
	Personal     PersonalInfo  `json:"personalInfo"`
	About        string        `json:"about"`
	Languages    []Language    `json:"languages"`
	Skills       []SkillGroup  `json:"skills"`
	Experience   []Experience  `json:"experience"`
	SkillLevels  []SkillLevel  `json:"skillsTable"`
	Videos       []string      `json:"videos"`
	PDFFiles     []File        `json:"pdfFiles"`
	Projects     []Project     `json:"projects"`
	Testimonials []Testimonial `json:"testimonials"`
}

// Loading returns the aggregate shown before the first successful fetch.
func Loading() Data {
	return Data{
		Personal: PersonalInfo{
			Name:        "Loading...",
			Location:    "📍 Loading...",
			DateOfBirth: "📅 Loading...",
			Phone:       "📞 Loading...",
			Email:       "✉️ Loading...",
		},
		About:        "Loading...",
		Languages:    []Language{},
		Skills:       []SkillGroup{},
		Experience:   []Experience{},
		SkillLevels:  []SkillLevel{},
		Videos:       []string{},
		PDFFiles:     []File{},
		Projects:     []Project{},
		Testimonials: []Testimonial{},
	}
}
