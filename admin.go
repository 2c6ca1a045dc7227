// admin.go - privacy-conscious admin system
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/media"
	"github.com/Zachkp/webresume/internal/store"
)

const adminCookie = "admin_token"

// adminAuth holds the admin credentials and the per-process session token.
type adminAuth struct {
	username string
	password string
	token    string
	salt     string
}

func newAdminAuth(username, password string) *adminAuth {
	return &adminAuth{
		username: username,
		password: password,
		token:    generateAdminToken(),
		salt:     generateAdminToken(), // Use for IP hashing
	}
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate admin token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// Hash IP address for privacy compliance (consistent per IP)
func (a *adminAuth) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminAuth) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a *adminAuth) checkToken(token string) bool {
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1
}

func (s *server) authenticated(c *gin.Context) bool {
	token, err := c.Cookie(adminCookie)
	return err == nil && s.admin.checkToken(token)
}

// Middleware to check admin authentication. API callers get a 401, browsers
// are sent to the login page.
func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.authenticated(c) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) setAdminCookie(c *gin.Context) {
	c.SetCookie(adminCookie, s.admin.token, 3600*24, "/", "", false, true)
}

func (s *server) clearAdminCookie(c *gin.Context) {
	c.SetCookie(adminCookie, "", -1, "/", "", false, true)
}

// Privacy-conscious visitor tracking middleware
func (s *server) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only page views count; skip assets, fragments, APIs and admin pages
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/media/") ||
			strings.HasPrefix(path, "/admin") ||
			strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/carousel") ||
			strings.HasPrefix(path, "/favicon") ||
			strings.HasPrefix(path, "/privacy") {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  s.admin.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: time.Now(),
		}
		go func() {
			if err := s.store.RecordVisit(context.Background(), visit); err != nil {
				s.log.Error("error recording visitor", "error", err)
			}
		}()
		c.Next()
	}
}

// cleanupOldVisitorData deletes visits older than the retention period.
func (s *server) cleanupOldVisitorData(ctx context.Context) {
	n, err := s.store.PurgeVisitsBefore(ctx, time.Now().Add(-s.cfg.VisitorRetention))
	if err != nil {
		s.log.Error("error cleaning up old visitor data", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("privacy cleanup removed old visitor records", "count", n)
	}
}

func (s *server) runVisitorCleanup(ctx context.Context, interval time.Duration) {
	s.cleanupOldVisitorData(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOldVisitorData(ctx)
		}
	}
}

// resumeForm is the admin editor's view of a resume: scalar fields as text
// and list fields as indented JSON.
type resumeForm struct {
	ID    int64
	Text  []formField
	Lists []formField
	Saved bool
	Error string
	Photo string
}

type formField struct {
	Name  string
	Label string
	Value string
}

//nolint:gochecknoglobals // editor layout
var (
	resumeTextFields = []formField{
		{Name: "name", Label: "Name"},
		{Name: "location", Label: "Location"},
		{Name: "date_of_birth", Label: "Date of birth"},
		{Name: "phone", Label: "Phone"},
		{Name: "email", Label: "Email"},
		{Name: "about", Label: "About (Markdown)"},
	}
	resumeListFields = []formField{
		{Name: "languages", Label: "Languages"},
		{Name: "skills", Label: "Skills"},
		{Name: "experience", Label: "Experience"},
		{Name: "skills_table", Label: "Skill levels"},
		{Name: "resume_projects", Label: "Projects"},
		{Name: "testimonials", Label: "Testimonials"},
		{Name: "video_urls", Label: "Video URLs"},
		{Name: "pdf_files", Label: "Documents"},
	}
)

func newResumeForm(r store.Resume) resumeForm {
	scalars := map[string]string{
		"name": r.Name, "location": r.Location, "date_of_birth": r.DateOfBirth,
		"phone": r.Phone, "email": r.Email, "about": r.About,
	}
	lists := map[string]json.RawMessage{
		"languages": r.Languages, "skills": r.Skills, "experience": r.Experience,
		"skills_table": r.SkillsTable, "resume_projects": r.ResumeProjects,
		"testimonials": r.Testimonials, "video_urls": r.VideoURLs, "pdf_files": r.PDFFiles,
	}

	form := resumeForm{ID: r.ID, Photo: r.Photo}
	for _, f := range resumeTextFields {
		f.Value = scalars[f.Name]
		form.Text = append(form.Text, f)
	}
	for _, f := range resumeListFields {
		f.Value = indentJSON(lists[f.Name])
		form.Lists = append(form.Lists, f)
	}
	return form
}

func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return string(raw)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(b)
}

// resumeFields reads the editor form into store update fields.
func resumeFields(c *gin.Context) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	for _, f := range resumeTextFields {
		b, err := json.Marshal(c.PostForm(f.Name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s", f.Name)
		}
		fields[f.Name] = b
	}
	for _, f := range resumeListFields {
		value := strings.TrimSpace(c.PostForm(f.Name))
		if value == "" {
			value = "[]"
		}
		if !json.Valid([]byte(value)) {
			return nil, errors.Wrapf(store.ErrInvalid, "%s is not valid JSON", f.Label)
		}
		fields[f.Name] = json.RawMessage(value)
	}
	return fields, nil
}

// Setup all admin routes
func (s *server) setupAdminRoutes(r *gin.Engine) {
	// Privacy policy route
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"retention": s.cfg.VisitorRetention.String(),
		})
	})

	// Admin login page
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	// Admin login handler
	r.POST("/admin/login", func(c *gin.Context) {
		if s.admin.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			s.setAdminCookie(c)
			s.log.Info("admin login successful", "client", s.admin.hashIP(c.ClientIP()))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		s.log.Warn("failed admin login attempt", "client", s.admin.hashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"error": "Invalid credentials",
		})
	})

	// Admin logout
	r.GET("/admin/logout", func(c *gin.Context) {
		s.clearAdminCookie(c)
		s.log.Info("admin logout", "client", s.admin.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			s.log.Error("error loading admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}

		status := s.poller.Fetcher().Status()
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":     stats,
			"updatedAt": status.UpdatedAt,
			"fetchErr":  status.Err,
		})
	})

	// Admin API endpoints for HTMX/AJAX
	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.store.RecentVisits(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	adminGroup.GET("/messages", func(c *gin.Context) {
		messages, err := s.store.ListMessages(c.Request.Context(), 0)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load messages",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{
			"messages": messages,
		})
	})

	adminGroup.POST("/messages/:id/read", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := s.store.MarkMessageRead(c.Request.Context(), id); err != nil {
			s.apiError(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/admin/messages")
	})

	adminGroup.DELETE("/messages/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := s.store.DeleteMessage(c.Request.Context(), id); err != nil {
			s.apiError(c, err)
			return
		}
		s.log.Info("message deleted by admin", "id", id, "client", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
	})

	adminGroup.GET("/projects", func(c *gin.Context) {
		s.renderProjects(c, http.StatusOK, "")
	})

	adminGroup.POST("/projects", func(c *gin.Context) {
		p := store.Project{
			Title:       strings.TrimSpace(c.PostForm("title")),
			Description: c.PostForm("description"),
			Image:       c.PostForm("image"),
			GithubURL:   c.PostForm("github_url"),
			LiveURL:     c.PostForm("live_url"),
			VideoURL:    c.PostForm("video_url"),
		}
		for _, t := range strings.Split(c.PostForm("technologies"), ",") {
			if t = strings.TrimSpace(t); t != "" {
				p.Technologies = append(p.Technologies, t)
			}
		}
		if p.Title == "" {
			s.renderProjects(c, http.StatusBadRequest, "Title is required")
			return
		}
		if _, err := s.store.CreateProject(c.Request.Context(), p); err != nil {
			s.log.Error("failed to create project", "error", err)
			s.renderProjects(c, http.StatusInternalServerError, "Failed to create project")
			return
		}
		s.contentChanged()
		c.Redirect(http.StatusSeeOther, "/admin/projects")
	})

	// Delete project (with confirmation)
	adminGroup.DELETE("/projects/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := s.store.DeleteProject(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			s.log.Error("error deleting project", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
			return
		}
		s.contentChanged()
		s.log.Info("project deleted by admin", "id", id, "client", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	})

	adminGroup.GET("/resume", func(c *gin.Context) {
		r, err := s.store.LatestResume(c.Request.Context())
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load resume",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-resume.html", newResumeForm(r))
	})

	adminGroup.POST("/resume", func(c *gin.Context) {
		ctx := c.Request.Context()
		fields, err := resumeFields(c)
		if err == nil {
			var latest store.Resume
			latest, err = s.store.LatestResume(ctx)
			switch {
			case errors.Is(err, store.ErrNotFound):
				_, err = s.store.CreateResume(ctx, fields)
			case err == nil:
				_, err = s.store.UpdateResume(ctx, latest.ID, fields)
			}
		}

		if err != nil {
			form := newResumeForm(store.Resume{})
			for i := range form.Text {
				form.Text[i].Value = c.PostForm(form.Text[i].Name)
			}
			for i := range form.Lists {
				form.Lists[i].Value = c.PostForm(form.Lists[i].Name)
			}
			form.Error = err.Error()
			status := http.StatusBadRequest
			if !errors.Is(err, store.ErrInvalid) {
				s.log.Error("failed to save resume", "error", err)
				status = http.StatusInternalServerError
				form.Error = "Failed to save resume"
			}
			c.HTML(status, "admin-resume.html", form)
			return
		}

		s.contentChanged()
		saved, _ := s.store.LatestResume(ctx)
		form := newResumeForm(saved)
		form.Saved = true
		c.HTML(http.StatusOK, "admin-resume.html", form)
	})

	adminGroup.POST("/upload", func(c *gin.Context) {
		kind, err := media.ParseKind(c.PostForm("type"))
		if err != nil {
			c.HTML(http.StatusBadRequest, "admin-error.html", gin.H{"error": err.Error()})
			return
		}
		file, err := c.FormFile("file")
		if err != nil {
			c.HTML(http.StatusBadRequest, "admin-error.html", gin.H{"error": "Choose a file to upload"})
			return
		}
		if _, err := s.saveUpload(c.Request.Context(), kind, file); err != nil {
			s.log.Warn("upload rejected", "error", err)
			c.HTML(http.StatusBadRequest, "admin-error.html", gin.H{"error": err.Error()})
			return
		}
		c.Redirect(http.StatusSeeOther, "/admin/resume")
	})

	// Privacy compliance endpoint
	adminGroup.POST("/privacy/delete-visitor-data", func(c *gin.Context) {
		go s.cleanupOldVisitorData(context.Background())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.log.Info("admin stats exported", "client", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}

func (s *server) renderProjects(c *gin.Context, status int, formError string) {
	projects, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
			"error": "Failed to load projects",
		})
		return
	}
	c.HTML(status, "admin-projects.html", gin.H{
		"projects": projects,
		"error":    formError,
	})
}

func (s *server) apiLogin(c *gin.Context) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if !s.admin.checkCredentials(creds.Username, creds.Password) {
		s.log.Warn("failed API login attempt", "client", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	s.setAdminCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "username": s.admin.username})
}

func (s *server) apiLogout(c *gin.Context) {
	s.clearAdminCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) apiAuthStatus(c *gin.Context) {
	if s.authenticated(c) {
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": s.admin.username})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}
