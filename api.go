package main

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/contact"
	"github.com/Zachkp/webresume/internal/media"
	"github.com/Zachkp/webresume/internal/store"
)

func (s *server) setupAPIRoutes(r *gin.Engine) {
	r.POST("/chat-message/", s.handleChatMessage)
	r.POST("/send-message/", s.handleSendMessage)

	api := r.Group("/api")
	api.GET("/resumes/", s.listResumes)
	api.GET("/resumes/latest/", s.latestResume)
	api.GET("/resumes/:id/", s.getResume)
	api.GET("/projects/", s.listProjects)
	api.GET("/projects/:id/", s.getProject)
	api.POST("/messages/", s.createMessage)

	api.POST("/auth/login/", s.apiLogin)
	api.POST("/auth/logout/", s.apiLogout)
	api.GET("/auth/status/", s.apiAuthStatus)

	protected := api.Group("", s.adminAuthMiddleware())
	protected.POST("/resumes/", s.createResume)
	protected.PUT("/resumes/:id/", s.updateResume)
	protected.PATCH("/resumes/:id/", s.updateResume)
	protected.POST("/projects/", s.createProject)
	protected.PUT("/projects/:id/", s.updateProject)
	protected.DELETE("/projects/:id/", s.deleteProject)
	protected.GET("/messages/", s.listMessages)
	protected.GET("/messages/:id/", s.getMessage)
	protected.DELETE("/messages/:id/", s.deleteMessage)
	protected.POST("/messages/:id/mark_as_read/", s.markMessageRead)
	protected.POST("/upload/:type", s.handleUpload)
}

// apiError writes err as a JSON error with a status derived from its cause.
func (s *server) apiError(c *gin.Context, err error) {
	var missing *contact.MissingFieldsError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrInvalid), errors.Is(err, media.ErrUnsupported), errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// contentChanged asks the site poller to pick up a write right away.
func (s *server) contentChanged() {
	if s.poller != nil {
		s.poller.Trigger()
	}
}

func (s *server) listResumes(c *gin.Context) {
	resumes, err := s.store.ListResumes(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (s *server) latestResume(c *gin.Context) {
	r, err := s.store.LatestResume(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *server) getResume(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	r, err := s.store.GetResume(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *server) createResume(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	r, err := s.store.CreateResume(c.Request.Context(), fields)
	if err != nil {
		s.apiError(c, err)
		return
	}
	s.contentChanged()
	c.JSON(http.StatusCreated, r)
}

func (s *server) updateResume(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	r, err := s.store.UpdateResume(c.Request.Context(), id, fields)
	if err != nil {
		s.apiError(c, err)
		return
	}
	s.contentChanged()
	c.JSON(http.StatusOK, r)
}

func (s *server) listProjects(c *gin.Context) {
	projects, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *server) getProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) createProject(c *gin.Context) {
	var p store.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := s.store.CreateProject(c.Request.Context(), p)
	if err != nil {
		s.apiError(c, err)
		return
	}
	s.contentChanged()
	c.JSON(http.StatusCreated, p)
}

func (s *server) updateProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var p store.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id
	p, err := s.store.UpdateProject(c.Request.Context(), p)
	if err != nil {
		s.apiError(c, err)
		return
	}
	s.contentChanged()
	c.JSON(http.StatusOK, p)
}

func (s *server) deleteProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.store.DeleteProject(c.Request.Context(), id); err != nil {
		s.apiError(c, err)
		return
	}
	s.contentChanged()
	c.Status(http.StatusNoContent)
}

// createMessage stores a contact message. The relay outcome does not affect
// the response.
func (s *server) createMessage(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	msg, err := s.contact.Submit(c.Request.Context(), sub)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *server) listMessages(c *gin.Context) {
	messages, err := s.store.ListMessages(c.Request.Context(), 0)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *server) getMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := s.store.GetMessage(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *server) deleteMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.store.DeleteMessage(c.Request.Context(), id); err != nil {
		s.apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) markMessageRead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.store.MarkMessageRead(c.Request.Context(), id); err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "message marked as read"})
}

func (s *server) handleUpload(c *gin.Context) {
	kind, err := media.ParseKind(c.Param("type"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	asset, err := s.saveUpload(c.Request.Context(), kind, file)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// saveUpload stores an uploaded file and attaches it to the latest resume:
// photos replace the resume photo, documents are appended to pdf_files.
func (s *server) saveUpload(ctx context.Context, kind media.Kind, fh *multipart.FileHeader) (asset media.Asset, err error) {
	if s.media.MaxBytes > 0 && fh.Size > s.media.MaxBytes {
		return asset, media.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return asset, errors.Wrap(err, "failed to open upload")
	}
	defer f.Close()

	asset, err = s.media.Save(kind, fh.Filename, f)
	if err != nil {
		return asset, err
	}

	latest, err := s.store.LatestResume(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return asset, nil
	}
	if err != nil {
		return asset, err
	}

	fields := map[string]json.RawMessage{}
	if kind == media.Photo {
		fields["photo"], _ = json.Marshal(asset.URL)
	} else {
		var files []map[string]any
		if json.Unmarshal(latest.PDFFiles, &files) != nil {
			files = nil
		}
		files = append(files, map[string]any{
			"name":       asset.Name,
			"url":        asset.URL,
			"pages":      asset.Pages,
			"paragraphs": asset.Paragraphs,
			"excerpt":    asset.Excerpt,
		})
		fields["pdf_files"], err = json.Marshal(files)
		if err != nil {
			return asset, errors.Wrap(err, "failed to encode pdf_files")
		}
	}

	_, err = s.store.UpdateResume(ctx, latest.ID, fields)
	if err != nil {
		return asset, err
	}
	s.contentChanged()
	s.log.Info("upload attached to resume", "kind", kind, "url", asset.URL, "resume", latest.ID)
	return asset, nil
}

func (s *server) handleChatMessage(c *gin.Context) {
	var req struct {
		Message string         `json:"message"`
		History []chat.Message `json:"history"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user message is missing"})
		return
	}

	reply, err := s.chat.Reply(c.Request.Context(), req.Message, req.History)
	if err != nil {
		s.log.Error("chat completion failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": chatFailure})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": reply})
}

func (s *server) handleSendMessage(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	_, err := s.contact.Submit(c.Request.Context(), sub)
	if err != nil {
		var missing *contact.MissingFieldsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		s.log.Error("send-message failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
}
