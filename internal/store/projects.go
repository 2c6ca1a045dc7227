package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Project is a portfolio project shown alongside the resume.
type Project struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Technologies []string  `json:"technologies"`
	GithubURL    string    `json:"github_url"`
	LiveURL      string    `json:"live_url"`
	VideoURL     string    `json:"video_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const projectSelect = `SELECT id, title, description, image, technologies, github_url, live_url, video_url,
	created_at, updated_at FROM projects`

func scanProject(row scanner) (p Project, err error) {
	var techs string
	err = row.Scan(&p.ID, &p.Title, &p.Description, &p.Image, &techs, &p.GithubURL, &p.LiveURL, &p.VideoURL,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if json.Unmarshal([]byte(techs), &p.Technologies) != nil || p.Technologies == nil {
		p.Technologies = []string{}
	}
	return p, nil
}

// ListProjects returns projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, projectSelect+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list projects")
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan project")
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns one project.
func (s *Store) GetProject(ctx context.Context, id int64) (p Project, err error) {
	p, err = scanProject(s.db.QueryRowContext(ctx, projectSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, errors.Wrapf(err, "failed to load project %d", id)
	}
	return p, nil
}

// CreateProject inserts p and returns the stored copy.
func (s *Store) CreateProject(ctx context.Context, p Project) (Project, error) {
	techs, err := marshalStrings(p.Technologies)
	if err != nil {
		return Project{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (title, description, image, technologies, github_url, live_url, video_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Description, p.Image, techs, p.GithubURL, p.LiveURL, p.VideoURL, now, now)
	if err != nil {
		return Project{}, errors.Wrap(err, "failed to create project")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Project{}, errors.Wrap(err, "failed to read project id")
	}
	return s.GetProject(ctx, id)
}

// UpdateProject replaces the editable fields of project p.ID.
func (s *Store) UpdateProject(ctx context.Context, p Project) (Project, error) {
	techs, err := marshalStrings(p.Technologies)
	if err != nil {
		return Project{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, description = ?, image = ?, technologies = ?,
			github_url = ?, live_url = ?, video_url = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Description, p.Image, techs, p.GithubURL, p.LiveURL, p.VideoURL, time.Now().UTC(), p.ID)
	if err != nil {
		return Project{}, errors.Wrapf(err, "failed to update project %d", p.ID)
	}
	if err = affectedOne(res); err != nil {
		return Project{}, err
	}
	return s.GetProject(ctx, p.ID)
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete project %d", id)
	}
	return affectedOne(res)
}

func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode list")
	}
	return string(b), nil
}
