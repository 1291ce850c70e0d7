// Package server serves the local catalog in the autocomplete wire format.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/f3rmion/tagcalc/internal/calc"
	"github.com/f3rmion/tagcalc/internal/suggest"
	"github.com/f3rmion/tagcalc/internal/tag"
)

// Handler holds what the HTTP endpoints need.
type Handler struct {
	Source suggest.Source
	Log    logr.Logger
}

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	Tags []tag.Item `json:"tags"`
}

// EvaluateResponse is the result of POST /evaluate.
type EvaluateResponse struct {
	Expression string   `json:"expression"`
	Value      *float64 `json:"value"` // null when the value is not finite
	Display    string   `json:"display"`
	Recovered  bool     `json:"recovered"`
	Failed     bool     `json:"failed"`
}

// NewRouter builds the gin engine with all routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/autocomplete", h.Autocomplete)
	r.POST("/evaluate", h.Evaluate)

	r.NoRoute(func(c *gin.Context) {
		NotFound(c, fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})

	return r
}

// Autocomplete answers GET /autocomplete?name=<query>.
func (h *Handler) Autocomplete(c *gin.Context) {
	query := c.Query("name")

	items, err := h.Source.Lookup(c.Request.Context(), query)
	if err != nil {
		h.Log.Error(err, "autocomplete lookup failed", "query", query)
		Internal(c, "lookup failed")
		return
	}
	if items == nil {
		items = []tag.Item{}
	}

	c.JSON(http.StatusOK, items)
}

// Evaluate answers POST /evaluate with the value of the posted tag sequence.
func (h *Handler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp := NewEvaluateResponse(calc.Run(req.Tags))
	c.JSON(http.StatusOK, resp)
}

// NewEvaluateResponse converts an evaluation result to its wire form.
func NewEvaluateResponse(res calc.Result) EvaluateResponse {
	resp := EvaluateResponse{
		Expression: res.Expression,
		Display:    calc.Format(res.Value),
		Recovered:  res.Recovered,
		Failed:     res.Failed(),
	}
	if resp.Display != "" {
		v := res.Value
		resp.Value = &v
	}
	return resp
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.Log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String(),
		)
	}
}

// Run serves handler on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log logr.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
