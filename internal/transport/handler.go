package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ivlev/note-overlay/internal/archive"
	"github.com/ivlev/note-overlay/internal/config"
	"github.com/ivlev/note-overlay/internal/engine"
	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/logger"
	"github.com/ivlev/note-overlay/internal/pairing"
	"github.com/ivlev/note-overlay/internal/source"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PreviewResponse carries the four preview images. RequestID is echoed so a
// client can drop answers to requests it has already superseded; Stale is
// set when a newer request for the same slot reached the server first.
type PreviewResponse struct {
	RequestID  string `json:"request_id,omitempty"`
	Slot       string `json:"slot"`
	Stale      bool   `json:"stale"`
	TextPixels int    `json:"textPixels"`
	*engine.PreviewURLs
}

// optionsForm mirrors config.Options as multipart fields. Unset fields keep
// the preset's value.
type optionsForm struct {
	Preset        string   `form:"preset"`
	TextThreshold *int     `form:"textThreshold"`
	MaskExpand    *int     `form:"maskExpand"`
	BlockColor    *string  `form:"blockColor"`
	BlockOpacity  *float64 `form:"blockOpacity"`
}

type handler struct {
	engine  *engine.Engine
	presets []config.Preset
	cfg     *config.ServerConfig

	slots *previewSlots
}

func NewHandler(eng *engine.Engine, presets []config.Preset, cfg *config.ServerConfig) http.Handler {
	h := &handler{
		engine:  eng,
		presets: presets,
		cfg:     cfg,
		slots:   newPreviewSlots(maxPreviewSlots),
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/health", healthCheck)
	r.POST("/merge", h.merge)
	r.POST("/preview", h.preview)
	r.POST("/batch", h.batch)

	return r
}

func (h *handler) merge(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	opts, err := h.bindOptions(c)
	if err != nil {
		respondError(c, statusOf(err), "invalid options", err)
		return
	}
	original, annotated, err := pairFromForm(c)
	if err != nil {
		respondError(c, statusOf(err), "invalid upload", err)
		return
	}

	res, err := h.engine.ProcessPair(ctx, original, annotated, opts)
	if err != nil {
		respondError(c, statusOf(err), "merge failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"original": original.Name(),
		"size":     fmt.Sprintf("%dx%d", res.Width, res.Height),
		"bytes":    len(res.Data),
	}).Info("Pair merged")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Name))
	c.Data(http.StatusOK, h.engine.Encoder.MIMEType(), res.Data)
}

func (h *handler) preview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	slot := c.DefaultPostForm("slot", "default")
	tracker := h.tracker(slot)
	ticket := tracker.Next()

	opts, err := h.bindOptions(c)
	if err != nil {
		respondError(c, statusOf(err), "invalid options", err)
		return
	}
	original, annotated, err := pairFromForm(c)
	if err != nil {
		respondError(c, statusOf(err), "invalid upload", err)
		return
	}

	p, err := h.engine.Preview(ctx, ticket, original, annotated, opts)
	if err != nil {
		respondError(c, statusOf(err), "preview failed", err)
		return
	}
	urls, err := p.DataURLs(h.engine.Encoder)
	if err != nil {
		respondError(c, statusOf(err), "preview failed", err)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{
		RequestID:   c.PostForm("request_id"),
		Slot:        slot,
		Stale:       !tracker.IsCurrent(ticket),
		TextPixels:  p.TextPixels,
		PreviewURLs: urls,
	})
}

func (h *handler) batch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	opts, err := h.bindOptions(c)
	if err != nil {
		respondError(c, statusOf(err), "invalid options", err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, statusOf(err), "invalid upload", err)
		return
	}

	strategy, err := pairing.NewStrategy(c.DefaultPostForm("strategy", "keyword"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid strategy", err)
		return
	}

	var in pairing.Input
	if in.Files, err = readFiles(form.File["files"]); err == nil {
		if in.Originals, err = readFiles(form.File["originals"]); err == nil {
			in.Annotated, err = readFiles(form.File["annotated"])
		}
	}
	if err != nil {
		respondError(c, statusOf(err), "invalid upload", err)
		return
	}

	matched, err := strategy.Match(in)
	if err != nil {
		respondError(c, http.StatusBadRequest, "pairing failed", err)
		return
	}

	var out bytes.Buffer
	zw := archive.NewWriter(&out)
	runner := &engine.Runner{Engine: h.engine, Archive: zw, Workers: h.cfg.BatchWorkers}

	start := time.Now()
	report, err := runner.RunBatch(ctx, matched.Pairs, opts, nil)
	if err != nil {
		respondError(c, statusOf(err), "batch failed", err)
		return
	}
	if err := zw.Close(); err != nil {
		respondError(c, http.StatusInternalServerError, "archive failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"strategy":           strategy.Name(),
		"total":              report.Total,
		"succeeded":          report.Succeeded,
		"failed":             report.Failed,
		"unpaired":           len(matched.Unpaired),
		"processing_time_ms": time.Since(start).Milliseconds(),
	}).Info("Batch completed")

	c.Header("X-Batch-Total", strconv.Itoa(report.Total))
	c.Header("X-Batch-Succeeded", strconv.Itoa(report.Succeeded))
	c.Header("X-Batch-Failed", strconv.Itoa(report.Failed))
	c.Header("X-Batch-Unpaired", strconv.Itoa(len(matched.Unpaired)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.DefaultName))
	c.Data(http.StatusOK, "application/zip", out.Bytes())
}

func (h *handler) tracker(slot string) *engine.Tracker {
	return h.slots.get(slot)
}

// bindOptions starts from the named preset (or the defaults) and applies
// the fields present in the form.
func (h *handler) bindOptions(c *gin.Context) (config.Options, error) {
	var f optionsForm
	if err := c.ShouldBind(&f); err != nil {
		return config.Options{}, apperrors.NewValidationError("malformed option fields", err)
	}

	opts := config.DefaultOptions()
	if f.Preset != "" {
		p, ok := config.FindPreset(h.presets, f.Preset)
		if !ok {
			return config.Options{}, apperrors.NewValidationError(fmt.Sprintf("unknown preset %q", f.Preset), nil)
		}
		opts = p.Options
	}
	opts = opts.WithOverrides(config.Overrides{
		TextThreshold: f.TextThreshold,
		MaskExpand:    f.MaskExpand,
		BlockColor:    f.BlockColor,
		BlockOpacity:  f.BlockOpacity,
	})
	return opts, opts.Validate()
}

func pairFromForm(c *gin.Context) (source.Resource, source.Resource, error) {
	original, err := formResource(c, "original")
	if err != nil {
		return nil, nil, err
	}
	annotated, err := formResource(c, "annotated")
	if err != nil {
		return nil, nil, err
	}
	return original, annotated, nil
}

func formResource(c *gin.Context, field string) (source.Resource, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("missing file field %q", field), err)
	}
	res, err := readFile(fh)
	if err != nil {
		return nil, err
	}
	if !source.IsImage(res.(source.Memory).Data) && !source.HasImageExtension(fh.Filename) {
		return nil, apperrors.NewDecodeError(fh.Filename, errors.New("upload is not an image or PDF"))
	}
	return res, nil
}

func readFiles(headers []*multipart.FileHeader) ([]source.Resource, error) {
	out := make([]source.Resource, 0, len(headers))
	for _, fh := range headers {
		res, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// readFile buffers an upload. Multipart temp files are removed when the
// request ends and batch workers may read concurrently.
func readFile(fh *multipart.FileHeader) (source.Resource, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewDecodeError(fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewDecodeError(fh.Filename, err)
	}
	return source.Memory{Filename: fh.Filename, Data: data}, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Debug("Request served")
	}
}

func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return apperrors.HTTPStatus(err)
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
