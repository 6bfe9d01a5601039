package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-cvd-inspector/internal/analyzer"
	"go-cvd-inspector/internal/config"
	apperrors "go-cvd-inspector/internal/errors"
	"go-cvd-inspector/internal/logger"
	"go-cvd-inspector/internal/observer"
	"go-cvd-inspector/internal/report"
	"go-cvd-inspector/internal/service"
	"go-cvd-inspector/internal/storage"
	"go-cvd-inspector/internal/strategy"
	"go-cvd-inspector/internal/version"
	"go-cvd-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func NewHandler(svc service.AnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck(metrics))
	r.GET("/metadata", imageMetadata(svc, cfg))
	r.POST("/analyze", analyzeSource(svc, cfg))
	r.POST("/analyze/upload", analyzeUpload(svc, cfg))

	return r
}

func analyzeSource(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Log request start
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing colorblind analysis request")

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bodyErrorStatus(err), "invalid request format", err)
			return
		}

		opts, err := requestOptions(cfg, req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid analysis options", err)
			return
		}

		result, err := svc.AnalyzeColorblindFriendliness(ctx, req.Source, opts)
		if err != nil {
			respondError(c, determineStatusCode(err), "analysis failed", err)
			return
		}

		respond(c, result, req.IncludeImages, startTime)
	}
}

func analyzeUpload(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		file, header, err := c.Request.FormFile("image")
		if err != nil {
			if code := bodyErrorStatus(err); code == http.StatusRequestEntityTooLarge {
				respondError(c, code, "upload too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, "missing image upload",
				apperrors.NewValidationError("multipart field \"image\" is required", err))
			return
		}
		defer file.Close()

		req, err := queryRequest(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid query parameters", err)
			return
		}
		req.Source = header.Filename

		opts, err := requestOptions(cfg, req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid analysis options", err)
			return
		}

		img, err := storage.DecodeImage(file)
		if err != nil {
			loadErr := apperrors.NewImageLoadError("uploaded file is not a supported image", err)
			respondError(c, loadErr.StatusCode, "failed to load image", loadErr)
			return
		}

		result, err := svc.AnalyzeImage(ctx, header.Filename, img, opts)
		if err != nil {
			respondError(c, determineStatusCode(err), "analysis failed", err)
			return
		}

		respond(c, result, req.IncludeImages, startTime)
	}
}

func imageMetadata(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ImageFetchTimeout)
		defer cancel()

		meta, err := svc.GetImageMetadata(ctx, c.Query("source"))
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to read image metadata", err)
			return
		}
		c.JSON(http.StatusOK, meta)
	}
}

func respond(c *gin.Context, result *models.AnalysisResult, includeImages bool, startTime time.Time) {
	resp, err := report.NewResponse(result, includeImages)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to encode simulations", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"id":                 result.ID,
		"source":             result.Source,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
		"palette_size":       len(result.Palette),
		"issues":             len(result.ContrastIssues),
	}).Info("Colorblind analysis completed successfully")

	c.JSON(http.StatusOK, resp)
}

// requestOptions layers request overrides and the analysis mode over the
// configured defaults
func requestOptions(cfg *config.Config, req models.AnalysisRequest) (analyzer.AnalysisOptions, error) {
	opts := cfg.Analysis.Options()
	if req.PaletteSize != nil {
		opts = opts.WithPaletteSize(*req.PaletteSize)
	}
	if req.ContrastThreshold != nil {
		opts = opts.WithContrastThreshold(*req.ContrastThreshold)
	}
	if req.DeficiencySeverity != nil {
		opts = opts.WithSeverity(*req.DeficiencySeverity)
	}
	if req.Model != "" {
		opts = opts.WithModel(req.Model)
	}
	if req.Seed != 0 {
		opts = opts.WithSeed(req.Seed)
	}

	s, err := strategy.ForName(req.Mode)
	if err != nil {
		return opts, apperrors.NewValidationError(err.Error(), err)
	}
	opts = s.Apply(opts)
	return opts, opts.Validate()
}

// queryRequest reads analysis parameters from the query string for uploads
func queryRequest(c *gin.Context) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest
	if v := c.Query("palette_size"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return req, apperrors.NewValidationError("palette_size must be an integer", err)
		}
		req.PaletteSize = &k
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"contrast_threshold", &req.ContrastThreshold},
		{"deficiency_severity", &req.DeficiencySeverity},
	} {
		if v := c.Query(p.name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, apperrors.NewValidationError(p.name+" must be a number", err)
			}
			*p.dst = &f
		}
	}
	if v := c.Query("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return req, apperrors.NewValidationError("seed must be an unsigned integer", err)
		}
		req.Seed = seed
	}
	req.Model = c.Query("model")
	req.Mode = c.Query("mode")
	req.IncludeImages = c.Query("include_images") == "true"
	return req, nil
}

func healthCheck(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "available",
			"version": version.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		}
		if metrics != nil {
			body["metrics"] = metrics.GetMetrics()
		}
		c.JSON(http.StatusOK, body)
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

// bodyErrorStatus maps a failure to read the request body: 413 when the
// size limiter cut it off, 400 otherwise
func bodyErrorStatus(err error) int {
	if isBodyTooLarge(err) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	// multipart parsing does not always wrap the reader error
	return errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large")
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case isBodyTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
