package experiment

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/server"
	"github.com/kbukum/gonogo/server/middleware"
)

// Handler exposes the experiment over HTTP.
type Handler struct {
	svc      *Service
	params   Params
	paramsJS template.JS
	page     *template.Template
	static   *staticFiles
}

// NewHandler prepares the page and static file serving. params is rendered
// into every page as is.
func NewHandler(svc *Service, params Params, fsys afero.Fs, cfg Config) (*Handler, error) {
	cfg.ApplyDefaults()

	js, err := params.JS()
	if err != nil {
		return nil, err
	}
	page, err := loadTemplates(cfg.ViewsDir)
	if err != nil {
		return nil, err
	}
	return &Handler{
		svc:      svc,
		params:   params,
		paramsJS: js,
		page:     page,
		static:   newStaticFiles(fsys, cfg.PublicDir, cfg.StaticMounts),
	}, nil
}

// Params returns the bundle the page is rendered with.
func (h *Handler) Params() Params { return h.params }

// Register mounts the experiment routes and the static fallback on engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.SetHTMLTemplate(h.page)
	engine.GET("/", h.Index)
	engine.POST("/experiment-data", h.Submit)
	engine.NoRoute(h.static.handle)
}

// Index renders the experiment page.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, PageTemplate, gin.H{"PARAMS": h.paramsJS})
}

// Submit stores the JSON request body. Every outcome ends the request: 200
// with an empty body when the submission was handled, 400 for a body that
// is not a JSON object or array, 413 for an oversize body and 500 when the
// insert failed. An empty body is stored as {}.
func (h *Handler) Submit(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			server.RespondWithError(c, errors.PayloadTooLarge(tooLarge.Limit))
			return
		}
		server.RespondWithError(c, errors.InvalidInput("body", "could not read request body"))
		return
	}

	payload, err := decodeBody(body)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	meta := Meta{
		RequestID:  middleware.RequestIDFromContext(c.Request.Context()),
		ReceivedAt: time.Now().UTC(),
	}
	if _, err := h.svc.Submit(c.Request.Context(), payload, meta); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondEmptyOK(c)
}

func decodeBody(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.InvalidInput("body", "malformed JSON")
	}
	switch payload.(type) {
	case map[string]any, []any:
		return payload, nil
	default:
		return nil, errors.InvalidInput("body", "must be a JSON object or array")
	}
}
