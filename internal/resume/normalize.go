package resume

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is a resume record as the backend returns it. Field names and value
// shapes are backend-defined; nothing about them is trusted.
type Record map[string]any

// ID returns the record id, or 0 when the record has none.
func (r Record) ID() int64 {
	switch v := r["id"].(type) {
	case float64:
		if v > 0 && v == math.Trunc(v) {
			return int64(v)
		}
	case json.Number:
		n, err := v.Int64()
		if err == nil && n > 0 {
			return n
		}
	case int64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return int64(v)
		}
	}
	return 0
}

// Normalize coerces a backend record into the fixed Data schema. Lists that
// are not list-shaped become empty, missing scalars become placeholders and
// malformed list entries are dropped. It is a pure function of r.
func Normalize(r Record) Data {
	d := Data{
		ID: r.ID(),
		Personal: PersonalInfo{
			Name:        scalar(r["name"], MissingName),
			Location:    scalar(r["location"], MissingLocation),
			DateOfBirth: scalar(r["date_of_birth"], MissingDateOfBirth),
			Phone:       scalar(r["phone"], MissingPhone),
			Email:       scalar(r["email"], MissingEmail),
			Photo:       scalar(r["photo"], ""),
		},
		About:        scalar(r["about"], MissingAbout),
		Languages:    []Language{},
		Skills:       []SkillGroup{},
		Experience:   []Experience{},
		SkillLevels:  []SkillLevel{},
		Videos:       []string{},
		PDFFiles:     []File{},
		Projects:     []Project{},
		Testimonials: []Testimonial{},
	}

	for _, m := range objects(r["languages"]) {
		d.Languages = append(d.Languages, Language{
			Language: scalar(m["language"], ""),
			Level:    scalar(m["level"], ""),
		})
	}

	for _, m := range objects(r["skills"]) {
		d.Skills = append(d.Skills, SkillGroup{
			Category: scalar(m["category"], ""),
			Items:    strs(m["items"]),
		})
	}

	for _, m := range objects(r["experience"]) {
		d.Experience = append(d.Experience, Experience{
			Period:      scalar(m["period"], ""),
			Title:       scalar(m["title"], ""),
			Company:     scalar(m["company"], ""),
			Description: strs(m["description"]),
		})
	}

	for _, m := range objects(r["skills_table"]) {
		d.SkillLevels = append(d.SkillLevels, SkillLevel{
			Skill: scalar(m["skill"], ""),
			Level: scalar(m["level"], ""),
		})
	}

	d.Videos = strs(r["video_urls"])

	for _, m := range objects(r["pdf_files"]) {
		d.PDFFiles = append(d.PDFFiles, File{
			Name:       scalar(m["name"], ""),
			URL:        scalar(m["url"], ""),
			Pages:      count(m["pages"]),
			Paragraphs: count(m["paragraphs"]),
			Excerpt:    scalar(m["excerpt"], ""),
		})
	}

	for _, m := range objects(r["resume_projects"]) {
		d.Projects = append(d.Projects, Project{
			Name:         scalar(m["name"], ""),
			Description:  scalar(m["description"], ""),
			Technologies: strs(m["technologies"]),
			Status:       scalar(m["status"], ""),
		})
	}

	for _, m := range objects(r["testimonials"]) {
		d.Testimonials = append(d.Testimonials, Testimonial{
			Name:     scalar(m["name"], ""),
			Position: scalar(m["position"], ""),
			Company:  scalar(m["company"], ""),
			Text:     scalar(m["text"], ""),
			Rating:   rating(m["rating"]),
		})
	}

	return d
}

func scalar(v any, placeholder string) string {
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return placeholder
}

// objects returns the object-shaped entries of a list value.
func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// strs returns the non-empty string entries of a list value. A bare string
// is treated as a one element list.
func strs(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s := scalar(item, ""); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if strings.TrimSpace(list) != "" {
			out = append(out, list)
		}
	}
	return out
}

// rating reads a 0-5 star rating from a number or numeric string.
func rating(v any) int {
	var n float64
	switch r := v.(type) {
	case float64:
		n = r
	case json.Number:
		n, _ = r.Float64()
	case string:
		n, _ = strconv.ParseFloat(strings.TrimSpace(r), 64)
	}
	switch {
	case n < 0 || math.IsNaN(n):
		return 0
	case n > 5:
		return 5
	}
	return int(n)
}

// count reads a non-negative whole number, or 0.
func count(v any) int {
	var n float64
	switch c := v.(type) {
	case float64:
		n = c
	case json.Number:
		n, _ = c.Float64()
	}
	if n < 0 || math.IsNaN(n) || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}
