package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Resume is a stored resume record. List fields hold whatever JSON the admin
// saved; the site normalizes them on read.
type Resume struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	DateOfBirth    string          `json:"date_of_birth"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Photo          string          `json:"photo"`
	About          string          `json:"about"`
	Languages      json.RawMessage `json:"languages"`
	Skills         json.RawMessage `json:"skills"`
	SkillsTable    json.RawMessage `json:"skills_table"`
	Experience     json.RawMessage `json:"experience"`
	ResumeProjects json.RawMessage `json:"resume_projects"`
	Testimonials   json.RawMessage `json:"testimonials"`
	VideoURLs      json.RawMessage `json:"video_urls"`
	PDFFiles       json.RawMessage `json:"pdf_files"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Resume columns that may be written through Create/Update.
//
//nolint:gochecknoglobals // column whitelist
var (
	resumeTextColumns = []string{"name", "location", "date_of_birth", "phone", "email", "photo", "about"}
	resumeJSONColumns = []string{"languages", "skills", "skills_table", "experience", "resume_projects", "testimonials", "video_urls", "pdf_files"}
)

const resumeSelect = `SELECT id, name, location, date_of_birth, phone, email, photo, about,
	languages, skills, skills_table, experience, resume_projects, testimonials, video_urls, pdf_files,
	created_at, updated_at FROM resumes`

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(row scanner) (r Resume, err error) {
	var languages, skills, skillsTable, experience, projects, testimonials, videos, pdfs string
	err = row.Scan(&r.ID, &r.Name, &r.Location, &r.DateOfBirth, &r.Phone, &r.Email, &r.Photo, &r.About,
		&languages, &skills, &skillsTable, &experience, &projects, &testimonials, &videos, &pdfs,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	r.Languages = rawJSON(languages)
	r.Skills = rawJSON(skills)
	r.SkillsTable = rawJSON(skillsTable)
	r.Experience = rawJSON(experience)
	r.ResumeProjects = rawJSON(projects)
	r.Testimonials = rawJSON(testimonials)
	r.VideoURLs = rawJSON(videos)
	r.PDFFiles = rawJSON(pdfs)
	return r, nil
}

func rawJSON(s string) json.RawMessage {
	if !json.Valid([]byte(s)) {
		return json.RawMessage("[]")
	}
	return json.RawMessage(s)
}

// LatestResume returns the most recently updated resume.
func (s *Store) LatestResume(ctx context.Context) (r Resume, err error) {
	row := s.db.QueryRowContext(ctx, resumeSelect+` ORDER BY updated_at DESC, id DESC LIMIT 1`)
	r, err = scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, errors.Wrap(err, "failed to load latest resume")
	}
	return r, nil
}

// GetResume returns the resume with the given id.
func (s *Store) GetResume(ctx context.Context, id int64) (r Resume, err error) {
	row := s.db.QueryRowContext(ctx, resumeSelect+` WHERE id = ?`, id)
	r, err = scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, errors.Wrapf(err, "failed to load resume %d", id)
	}
	return r, nil
}

// ListResumes returns all resumes, most recently updated first.
func (s *Store) ListResumes(ctx context.Context) ([]Resume, error) {
	rows, err := s.db.QueryContext(ctx, resumeSelect+` ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list resumes")
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan resume")
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}

// CountResumes returns the number of stored resumes.
func (s *Store) CountResumes(ctx context.Context) (n int64, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&n)
	if err != nil {
		err = errors.Wrap(err, "failed to count resumes")
	}
	return n, err
}

// CreateResume inserts a resume built from fields and returns it. Unknown
// fields are ignored.
func (s *Store) CreateResume(ctx context.Context, fields map[string]json.RawMessage) (r Resume, err error) {
	cols, args, err := resumeAssignments(fields)
	if err != nil {
		return r, err
	}

	now := time.Now().UTC()
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := `INSERT INTO resumes (` + strings.Join(cols, ", ") + `) VALUES (` + placeholders + `)`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r, errors.Wrap(err, "failed to create resume")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return r, errors.Wrap(err, "failed to read resume id")
	}
	return s.GetResume(ctx, id)
}

// UpdateResume applies a partial update and returns the stored result.
// Unknown fields are ignored.
func (s *Store) UpdateResume(ctx context.Context, id int64, fields map[string]json.RawMessage) (r Resume, err error) {
	cols, args, err := resumeAssignments(fields)
	if err != nil {
		return r, err
	}

	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx, `UPDATE resumes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return r, errors.Wrapf(err, "failed to update resume %d", id)
	}
	if err = affectedOne(res); err != nil {
		return r, err
	}
	return s.GetResume(ctx, id)
}

// resumeAssignments validates fields against the column whitelist. Text
// columns must be JSON strings (or null); list columns accept any JSON value.
func resumeAssignments(fields map[string]json.RawMessage) (cols []string, args []any, err error) {
	for _, col := range resumeTextColumns {
		raw, ok := fields[col]
		if !ok {
			continue
		}
		var v *string
		if err = json.Unmarshal(raw, &v); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalid, "field %q must be a string", col)
		}
		value := ""
		if v != nil {
			value = *v
		}
		cols = append(cols, col)
		args = append(args, value)
	}

	for _, col := range resumeJSONColumns {
		raw, ok := fields[col]
		if !ok {
			continue
		}
		if !json.Valid(raw) {
			return nil, nil, errors.Wrapf(ErrInvalid, "field %q is not valid JSON", col)
		}
		value := string(raw)
		if value == "null" {
			value = "[]"
		}
		cols = append(cols, col)
		args = append(args, value)
	}
	return cols, args, nil
}
