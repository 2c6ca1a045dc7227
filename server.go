package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/carousel"
	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/config"
	"github.com/Zachkp/webresume/internal/contact"
	"github.com/Zachkp/webresume/internal/fetcher"
	"github.com/Zachkp/webresume/internal/gesture"
	"github.com/Zachkp/webresume/internal/media"
	"github.com/Zachkp/webresume/internal/render"
	"github.com/Zachkp/webresume/internal/resume"
	"github.com/Zachkp/webresume/internal/section"
	"github.com/Zachkp/webresume/internal/session"
	"github.com/Zachkp/webresume/internal/store"
)

const (
	refreshFailedMessage = "Error loading data. Please try again later."
	refreshedMessage     = "Data refreshed"
	contactSuccess       = "Thank you for your message! I'll get back to you soon."
	contactFailure       = "Sorry, there was an error sending your message. Please try again later."
	chatFailure          = "Sorry, something went wrong while processing your message. Please try again later."
)

type server struct {
	cfg      config.Config
	log      *slog.Logger
	store    *store.Store
	poller   *fetcher.Poller
	sessions *session.Registry
	chat     chat.Replier
	contact  *contact.Service
	media    *media.Library
	admin    *adminAuth
}

func loadTemplates(r *gin.Engine, glob string) {
	r.SetFuncMap(render.Funcs())
	r.LoadHTMLGlob(glob)
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), s.visitorTrackingMiddleware())

	r.Static("/static", "./static")
	r.Static("/media", s.cfg.MediaDir)

	r.GET("/", s.handleIndex)
	r.GET("/carousel", s.handleCarousel)
	r.POST("/carousel/next", s.navigate(func(n carousel.Navigator) { n.Next() }))
	r.POST("/carousel/previous", s.navigate(func(n carousel.Navigator) { n.Previous() }))
	r.POST("/carousel/goto/:index", s.handleGoTo)
	r.POST("/carousel/swipe", s.handleSwipe)
	r.POST("/carousel/refresh", s.handleRefresh)

	r.POST("/contact", s.handleContactForm)
	r.POST("/chat/send", s.handleChatSend)

	s.setupAPIRoutes(r)
	s.setupAdminRoutes(r)
	return r
}

// requestLogger logs every request once it has been handled.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

type pageData struct {
	Sections     []section.Section
	Index        int
	Current      section.Section
	Resume       resume.Data
	Portfolio    []store.Project
	Loading      bool
	RefreshError string
	Toast        string
	Transcript   []chat.Entry
}

// visitorSession returns the caller's session, issuing a cookie for new ones.
func (s *server) visitorSession(c *gin.Context) *session.Session {
	id, _ := c.Cookie(session.CookieName)
	sess, created := s.sessions.Lookup(id)
	if created {
		c.SetCookie(session.CookieName, sess.ID, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)
	}
	return sess
}

// peekSession returns the caller's live session without creating one, so
// read-only page views by cookie-less clients allocate nothing.
func (s *server) peekSession(c *gin.Context) (*session.Session, bool) {
	id, err := c.Cookie(session.CookieName)
	if err != nil {
		return nil, false
	}
	return s.sessions.Find(id)
}

func (s *server) page(c *gin.Context, sess *session.Session, toast string) pageData {
	idx := 0
	var transcript []chat.Entry
	if sess != nil {
		idx = sess.Carousel.Index()
		transcript = sess.Chat.Transcript()
	} else {
		transcript = []chat.Entry{{ID: "greeting", Text: chat.Greeting, Sender: chat.SenderAssistant, Time: time.Now()}}
	}
	current, _ := section.At(idx)

	f := s.poller.Fetcher()
	status := f.Status()
	data := pageData{
		Sections:   section.All(),
		Index:      idx,
		Current:    current,
		Resume:     f.Data(),
		Loading:    status.Loading,
		Toast:      toast,
		Transcript: transcript,
	}
	if status.Err != nil {
		data.RefreshError = refreshFailedMessage
	}

	if current.ID == section.Projects {
		projects, err := s.store.ListProjects(c.Request.Context())
		if err != nil {
			s.log.Error("failed to load projects", "error", err)
		}
		data.Portfolio = projects
	}
	return data
}

func (s *server) handleIndex(c *gin.Context) {
	sess, _ := s.peekSession(c)
	c.HTML(http.StatusOK, "index.html", s.page(c, sess, ""))
}

func (s *server) handleCarousel(c *gin.Context) {
	sess, _ := s.peekSession(c)
	c.HTML(http.StatusOK, "carousel.html", s.page(c, sess, ""))
}

func (s *server) navigate(move func(carousel.Navigator)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := s.visitorSession(c)
		move(sess.Carousel)
		c.HTML(http.StatusOK, "carousel.html", s.page(c, sess, ""))
	}
}

// handleGoTo jumps to a section. Indices that are out of range or not
// numbers leave the carousel where it is.
func (s *server) handleGoTo(c *gin.Context) {
	sess := s.visitorSession(c)
	if index, err := strconv.Atoi(c.Param("index")); err == nil {
		sess.Carousel.GoTo(index)
	}
	c.HTML(http.StatusOK, "carousel.html", s.page(c, sess, ""))
}

// handleSwipe resolves a touch gesture posted as x0,y0 (touch start) and
// x1,y1 (last touch move). Without an end sample the gesture does nothing.
func (s *server) handleSwipe(c *gin.Context) {
	sess := s.visitorSession(c)

	start, okStart := formSample(c, "x0", "y0")
	end, okEnd := formSample(c, "x1", "y1")
	if okStart {
		// Each post carries a whole gesture, so it gets its own tracker.
		var tracker gesture.Tracker
		tracker.Start(start)
		if okEnd {
			tracker.Move(end)
		}
		d := tracker.End()
		gesture.Apply(d, sess.Carousel)
		s.log.Debug("swipe", "direction", d.String())
	}
	c.HTML(http.StatusOK, "carousel.html", s.page(c, sess, ""))
}

func formSample(c *gin.Context, xKey, yKey string) (gesture.Sample, bool) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(c.PostForm(xKey)), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(c.PostForm(yKey)), 64)
	if errX != nil || errY != nil {
		return gesture.Sample{}, false
	}
	return gesture.Sample{X: x, Y: y}, true
}

// handleRefresh reloads the resume on the visitor's request.
func (s *server) handleRefresh(c *gin.Context) {
	sess, _ := s.peekSession(c)
	toast := ""
	if err := s.poller.Fetcher().RefreshNow(c.Request.Context()); err == nil {
		toast = refreshedMessage
	}
	c.HTML(http.StatusOK, "carousel.html", s.page(c, sess, toast))
}

// Handle contact form submission with HTMX
func (s *server) handleContactForm(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": contactFailure})
		return
	}

	_, err := s.contact.Submit(c.Request.Context(), sub)
	if err != nil {
		var missing *contact.MissingFieldsError
		if errors.As(err, &missing) {
			c.HTML(http.StatusOK, "contact-error.html", gin.H{
				"error": "Please fill in all fields: " + strings.Join(missing.Fields, ", "),
			})
			return
		}
		s.log.Error("contact submission failed", "error", err)
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": contactFailure})
		return
	}

	c.HTML(http.StatusOK, "contact-success.html", gin.H{"success": contactSuccess})
}

func (s *server) handleChatSend(c *gin.Context) {
	sess := s.visitorSession(c)
	if err := sess.Chat.Send(c.Request.Context(), c.PostForm("message")); err != nil {
		s.log.Warn("chat reply failed", "error", err)
	}
	c.HTML(http.StatusOK, "chat.html", gin.H{"Transcript": sess.Chat.Transcript()})
}
