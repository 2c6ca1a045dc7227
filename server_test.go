package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/config"
	"github.com/Zachkp/webresume/internal/contact"
	"github.com/Zachkp/webresume/internal/fetcher"
	"github.com/Zachkp/webresume/internal/media"
	"github.com/Zachkp/webresume/internal/session"
	"github.com/Zachkp/webresume/internal/store"
)

type fakeReplier struct {
	reply string
	err   error
}

func (f *fakeReplier) Reply(context.Context, string, []chat.Message) (string, error) {
	return f.reply, f.err
}

type testSite struct {
	srv    *server
	router *gin.Engine
	store  *store.Store
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := slog.New(slog.DiscardHandler)
	cfg := config.Config{
		MediaDir:         filepath.Join(dir, "media"),
		SessionTTL:       time.Hour,
		MaxUploadBytes:   1 << 20,
		VisitorRetention: 24 * time.Hour,
	}
	replier := &fakeReplier{reply: "Happy to help"}
	srv := &server{
		cfg:      cfg,
		log:      log,
		store:    st,
		poller:   fetcher.NewPoller(fetcher.New(fetcher.StoreSource{Store: st}, nil, log), time.Hour),
		sessions: session.NewRegistry(cfg.SessionTTL, replier, "persona"),
		chat:     replier,
		contact:  contact.NewService(st, nil, log),
		media:    &media.Library{Dir: cfg.MediaDir, URLPrefix: "media", MaxBytes: cfg.MaxUploadBytes},
		admin:    newAdminAuth("admin", "secret"),
	}
	router := srv.router()
	loadTemplates(router, "templates/*")
	return &testSite{srv: srv, router: router, store: st}
}

// seed stores a resume and makes it the site's current data.
func (ts *testSite) seed(t *testing.T, name string) store.Resume {
	t.Helper()
	ctx := context.Background()
	r, err := ts.store.CreateResume(ctx, map[string]json.RawMessage{
		"name":      json.RawMessage(`"` + name + `"`),
		"about":     json.RawMessage(`"Builds **things**"`),
		"languages": json.RawMessage(`[{"language":"English","level":"Native"}]`),
	})
	require.NoError(t, err)
	require.NoError(t, ts.srv.poller.Fetcher().Refresh(ctx))
	return r
}

func (ts *testSite) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// visit starts a visitor session on the first section and returns its cookie.
func (ts *testSite) visit(t *testing.T) *http.Cookie {
	t.Helper()
	w := ts.do(httptest.NewRequest(http.MethodPost, "/carousel/goto/0", nil))
	require.Equal(t, http.StatusOK, w.Code)
	c := cookieNamed(w, session.CookieName)
	require.NotNil(t, c)
	return c
}

func (ts *testSite) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := ts.do(postJSON("/api/auth/login/", `{"username":"admin","password":"secret"}`))
	require.Equal(t, http.StatusOK, w.Code)
	c := cookieNamed(w, adminCookie)
	require.NotNil(t, c)
	return c
}

func TestIndexRendersResume(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")

	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Test Person")
	assert.Contains(t, body, `id="section-personal"`)
	assert.Contains(t, body, "Hey there!")
}

func TestPageViewsDoNotCreateSessions(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")

	for range 200 {
		for _, path := range []string{"/", "/carousel"} {
			w := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Nil(t, cookieNamed(w, session.CookieName))
		}
	}
	assert.Equal(t, 0, ts.srv.sessions.Len())

	sess := ts.visit(t)
	assert.Equal(t, 1, ts.srv.sessions.Len())

	ts.do(httptest.NewRequest(http.MethodPost, "/carousel/next", nil), sess)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil), sess)
	assert.Contains(t, w.Body.String(), `id="section-about"`)
	assert.Equal(t, 1, ts.srv.sessions.Len())
}

func TestIndexBeforeFirstFetch(t *testing.T) {
	ts := newTestSite(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Loading...")
}

func TestCarouselNavigation(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")
	sess := ts.visit(t)

	steps := []struct {
		path string
		want string
	}{
		{"/carousel/next", "about"},
		{"/carousel/goto/99", "about"},
		{"/carousel/goto/-1", "about"},
		{"/carousel/goto/abc", "about"},
		{"/carousel/goto/9", "media"},
		{"/carousel/next", "media"},
		{"/carousel/previous", "contact"},
		{"/carousel/goto/0", "personal"},
		{"/carousel/previous", "personal"},
	}
	for _, step := range steps {
		w := ts.do(httptest.NewRequest(http.MethodPost, step.path, nil), sess)
		require.Equal(t, http.StatusOK, w.Code, step.path)
		assert.Contains(t, w.Body.String(), `id="section-`+step.want+`"`, step.path)
	}
}

func TestCarouselIsPerVisitor(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")
	first := ts.visit(t)
	second := ts.visit(t)

	ts.do(httptest.NewRequest(http.MethodPost, "/carousel/goto/3", nil), first)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/carousel", nil), second)
	assert.Contains(t, w.Body.String(), `id="section-personal"`)
}

func TestSwipe(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")
	sess := ts.visit(t)

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"swipe left goes forward", url.Values{"x0": {"300"}, "y0": {"100"}, "x1": {"100"}, "y1": {"110"}}, "about"},
		{"short swipe ignored", url.Values{"x0": {"300"}, "y0": {"100"}, "x1": {"260"}, "y1": {"100"}}, "about"},
		{"vertical swipe ignored", url.Values{"x0": {"300"}, "y0": {"0"}, "x1": {"100"}, "y1": {"400"}}, "about"},
		{"tap without move ignored", url.Values{"x0": {"300"}, "y0": {"100"}}, "about"},
		{"swipe right goes back", url.Values{"x0": {"100"}, "y0": {"100"}, "x1": {"300"}, "y1": {"100"}}, "personal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(postForm("/carousel/swipe", tc.values), sess)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `id="section-`+tc.want+`"`)
		})
	}
}

func TestConcurrentSwipesFromOneVisitor(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")
	sess := ts.visit(t)

	forward := url.Values{"x0": {"300"}, "y0": {"100"}, "x1": {"100"}, "y1": {"100"}}
	var wg sync.WaitGroup
	for range 9 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts.do(postForm("/carousel/swipe", forward), sess)
		}()
	}
	wg.Wait()

	w := ts.do(httptest.NewRequest(http.MethodGet, "/carousel", nil), sess)
	assert.Contains(t, w.Body.String(), `id="section-media"`)
}

func TestManualRefresh(t *testing.T) {
	ts := newTestSite(t)
	sess := ts.visit(t)

	w := ts.do(httptest.NewRequest(http.MethodPost, "/carousel/refresh", nil), sess)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), refreshFailedMessage)
	assert.NotContains(t, w.Body.String(), refreshedMessage)

	_, err := ts.store.CreateResume(context.Background(), map[string]json.RawMessage{
		"name": json.RawMessage(`"Fresh Name"`),
	})
	require.NoError(t, err)

	w = ts.do(httptest.NewRequest(http.MethodPost, "/carousel/refresh", nil), sess)
	body := w.Body.String()
	assert.Contains(t, body, refreshedMessage)
	assert.Contains(t, body, "Fresh Name")
	assert.NotContains(t, body, refreshFailedMessage)
}

func TestResumeAPI(t *testing.T) {
	ts := newTestSite(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/resumes/latest/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	created := ts.seed(t, "Test Person")

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/resumes/latest/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var latest store.Resume
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))
	assert.Equal(t, created.ID, latest.ID)
	assert.Equal(t, "Test Person", latest.Name)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/resumes/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var all []store.Resume
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/resumes/abc/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWritesRequireAdmin(t *testing.T) {
	ts := newTestSite(t)

	w := ts.do(postJSON("/api/resumes/", `{"name":"Intruder"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = ts.do(postJSON("/api/auth/login/", `{"username":"admin","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := ts.login(t)
	w = ts.do(postJSON("/api/resumes/", `{"name":"Owner"}`), admin)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(postJSON("/api/resumes/", `{"name":5}`), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dashboard")
}

func TestSendMessage(t *testing.T) {
	ts := newTestSite(t)

	w := ts.do(postJSON("/send-message/", `{"sender_name":"Ann","message":"hi"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sender_email")

	w = ts.do(postJSON("/send-message/", `{"sender_name":"Ann","sender_email":"ann@example.com","message":"hi"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message sent"}`, w.Body.String())

	messages, err := ts.store.ListMessages(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Ann", messages[0].SenderName)
}

func TestContactForm(t *testing.T) {
	ts := newTestSite(t)

	w := ts.do(postForm("/contact", url.Values{"fullName": {"Ann"}, "email": {"ann@example.com"}, "message": {"Hello"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contact-success")

	w = ts.do(postForm("/contact", url.Values{"fullName": {"Ann"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contact-error")
	assert.Contains(t, w.Body.String(), "message")
}

func TestChatMessage(t *testing.T) {
	ts := newTestSite(t)

	w := ts.do(postJSON("/chat-message/", `{"message":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(postJSON("/chat-message/", `{"message":"hi","history":[{"role":"user","content":"earlier"}]}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Happy to help"}`, w.Body.String())

	ts.srv.chat = &fakeReplier{err: errors.New("chat API returned 401: invalid key sk-secret")}
	w = ts.do(postJSON("/chat-message/", `{"message":"hi"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"`+chatFailure+`"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "sk-secret")
}

func TestChatWidget(t *testing.T) {
	ts := newTestSite(t)
	sess := ts.visit(t)

	w := ts.do(postForm("/chat/send", url.Values{"message": {"Are you available?"}}), sess)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Are you available?")
	assert.Contains(t, body, "Happy to help")
}

func TestUploadAttachesPhoto(t *testing.T) {
	ts := newTestSite(t)
	created := ts.seed(t, "Test Person")
	admin := ts.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := ts.do(req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var asset media.Asset
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &asset))
	assert.True(t, strings.HasPrefix(asset.URL, "/media/photos/"))

	r, err := ts.store.GetResume(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.URL, r.Photo)
}

func TestUploadedDocumentShowsInMedia(t *testing.T) {
	ts := newTestSite(t)
	ts.seed(t, "Test Person")
	admin := ts.login(t)

	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Jane Doe")
	doc.AddParagraph().AddText("Backend engineer")
	var file bytes.Buffer
	_, err := doc.WriteTo(&file)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cv.docx")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/docx", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := ts.do(req, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, ts.srv.poller.Fetcher().Refresh(context.Background()))
	sess := ts.visit(t)
	w = ts.do(httptest.NewRequest(http.MethodPost, "/carousel/goto/9", nil), sess)
	body := w.Body.String()
	assert.Contains(t, body, "cv.docx")
	assert.Contains(t, body, "2 paragraphs")
	assert.Contains(t, body, "Jane Doe Backend engineer")
}

func TestUploadRejectsUnknownType(t *testing.T) {
	ts := newTestSite(t)
	admin := ts.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload/video", nil)
	w := ts.do(req, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
