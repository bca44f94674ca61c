// Package handler serves the HTML interface
package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/moneytag/moneytag/internal/service"
)

//go:embed templates/*.html
var templates embed.FS

type Handler struct {
	recorder *service.Recorder
}

func NewHandler(recorder *service.Recorder) *Handler {
	return &Handler{
		recorder: recorder,
	}
}

type recordForm struct {
	Title  *string `form:"title" binding:"required"`
	Amount string  `form:"amount" binding:"required"`
	Tag    *string `form:"tag" binding:"required"`
}

// NewRouter wires the routes. Assets are not served when assetsDir is empty.
func NewRouter(h *Handler, owner, assetsDir string) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(requestID(), accessLog(), gin.Recovery(), withOwner(owner))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.Index)
	r.GET("/create", h.CreateForm)
	r.POST("/create", h.HandleCreate)
	r.POST("/handle-create", h.HandleCreate)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if assetsDir != "" {
		r.Static("/assets", assetsDir)
	}
	return r, nil
}

func (h *Handler) Index(c *gin.Context) {
	records, err := h.recorder.Records(c.Request.Context(), ownerFrom(c))
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Records": records,
		"Summary": service.Summarize(records),
	})
}

func (h *Handler) CreateForm(c *gin.Context) {
	c.HTML(http.StatusOK, "create-record.html", nil)
}

// HandleCreate stores the submitted record and answers with the re-queried records.
// htmx requests get the fragment, plain form posts get the whole page.
func (h *Handler) HandleCreate(c *gin.Context) {
	owner := ownerFrom(c)

	var form recordForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.fail(c, http.StatusBadRequest, &service.DecodeError{Field: "form", Err: err})
		return
	}
	record, err := service.Decode(owner, *form.Title, form.Amount, *form.Tag)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	if err = h.recorder.Add(c.Request.Context(), record); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidRecord) {
			status = http.StatusBadRequest
		}
		h.fail(c, status, err)
		return
	}
	logrus.WithField("request_id", c.GetString(requestIDKey)).
		Infof("%s added record %q: %.2f %v", owner, record.Title, record.Amount, record.Tags)

	records, err := h.recorder.Records(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	page := "records.html"
	if c.GetHeader(htmxRequestHeader) != "true" {
		page = "index.html"
	}
	c.HTML(http.StatusOK, page, gin.H{
		"Records": records,
		"Summary": service.Summarize(records),
	})
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	logrus.WithField("request_id", c.GetString(requestIDKey)).
		Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.HTML(status, "error.html", gin.H{"Msg": err.Error()})
}
