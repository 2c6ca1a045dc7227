package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/resume"
	"github.com/Zachkp/webresume/internal/store"
)

// Source reads resume records from a backend. Latest returns a nil record
// (and no error) when the backend has no usable single record.
type Source interface {
	Latest(ctx context.Context) (resume.Record, error)
	List(ctx context.Context) ([]resume.Record, error)
}

// HTTPSource reads records from the REST backend rooted at BaseURL
// (for example http://localhost:8080/api).
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPSource creates a source for the backend at baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

// Latest fetches /resumes/latest/.
func (s *HTTPSource) Latest(ctx context.Context) (record resume.Record, err error) {
	var body []byte
	var status int
	body, status, err = s.get(ctx, "/resumes/latest/")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("latest resume request failed with status %d", status)
	}

	// Anything that is not a single object is "no usable record".
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}
	err = json.Unmarshal(trimmed, &record)
	if err != nil {
		err = errors.Wrap(err, "failed to parse latest resume")
		return nil, err
	}
	return record, nil
}

// List fetches /resumes/, accepting a bare array or a paginated
// {"results": [...]} envelope.
func (s *HTTPSource) List(ctx context.Context) (records []resume.Record, err error) {
	var body []byte
	var status int
	body, status, err = s.get(ctx, "/resumes/")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("resume list request failed with status %d", status)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []resume.Record `json:"results"`
		}
		err = json.Unmarshal(trimmed, &page)
		if err != nil {
			err = errors.Wrap(err, "failed to parse resume list")
			return nil, err
		}
		return page.Results, nil
	}

	err = json.Unmarshal(trimmed, &records)
	if err != nil {
		err = errors.Wrap(err, "failed to parse resume list")
		return nil, err
	}
	return records, nil
}

func (s *HTTPSource) get(ctx context.Context, path string) (body []byte, status int, err error) {
	u, err := url.Parse(s.baseURL + path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "invalid backend URL: %s", s.baseURL+path)
	}
	// Defeat intermediary caches so every poll sees the current record.
	q := u.Query()
	q.Set("t", strconv.FormatInt(s.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to read response body")
	}
	return body, resp.StatusCode, nil
}

// ResumeStore is the part of the store read by StoreSource.
type ResumeStore interface {
	LatestResume(ctx context.Context) (store.Resume, error)
	ListResumes(ctx context.Context) ([]store.Resume, error)
}

// StoreSource reads records straight from the local database, encoded the
// same way the REST backend serves them.
type StoreSource struct {
	Store ResumeStore
}

// Latest returns the most recently updated resume.
func (s StoreSource) Latest(ctx context.Context) (resume.Record, error) {
	r, err := s.Store.LatestResume(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRecord(r)
}

// List returns every resume.
func (s StoreSource) List(ctx context.Context) ([]resume.Record, error) {
	resumes, err := s.Store.ListResumes(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]resume.Record, 0, len(resumes))
	for _, r := range resumes {
		rec, err := toRecord(r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRecord(r store.Resume) (record resume.Record, err error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode resume")
	}
	err = json.Unmarshal(b, &record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode resume")
	}
	return record, nil
}
