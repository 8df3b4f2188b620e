package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-image-differ/internal/config"
	apperrors "go-image-differ/internal/errors"
	"go-image-differ/internal/logger"
	"go-image-differ/internal/service"
)

type CompareResponse struct {
	ID string `json:"id"`
}

type ResultResponse struct {
	Score     float64 `json:"score"`
	ImageData string  `json:"image_data"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(svc service.ComparisonService, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		corsMiddleware(cfg),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/comparisons", createComparison(svc, cfg))
	r.GET("/comparisons", listComparisons(svc))
	r.GET("/comparisons/types/comparison", listComparisonTypes(svc))
	r.GET("/comparisons/types/visualisation", listVisualisationTypes(svc))
	r.GET("/comparisons/:id", getComparison(svc))

	return r
}

func createComparison(svc service.ComparisonService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		sensitivity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("sensitivity")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid sensitivity", err)
			return
		}
		if sensitivity < 0 || sensitivity > 100 {
			respondError(c, http.StatusBadRequest, "invalid sensitivity",
				fmt.Errorf("sensitivity must be between 0 and 100, got %d", sensitivity))
			return
		}

		before, err := readUpload(c, "before_image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read before_image", err)
			return
		}
		after, err := readUpload(c, "after_image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read after_image", err)
			return
		}

		req := service.CompareRequest{
			Before:      before,
			After:       after,
			Comparison:  c.PostForm("comparison_type"),
			Overlay:     c.PostForm("visualisation_type"),
			Sensitivity: sensitivity,
		}

		logger.WithFields(logrus.Fields{
			"comparison":  req.Comparison,
			"overlay":     req.Overlay,
			"sensitivity": req.Sensitivity,
			"ip":          c.ClientIP(),
		}).Info("Processing comparison request")

		id, err := svc.Compare(ctx, req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "comparison failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"id":                 id,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Comparison request completed")

		c.JSON(http.StatusCreated, CompareResponse{ID: id})
	}
}

func getComparison(svc service.ComparisonService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			respondError(c, http.StatusBadRequest, "comparison ID cannot be empty", nil)
			return
		}

		result, err := svc.GetResult(c.Request.Context(), id)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to retrieve comparison", err)
			return
		}

		if len(result.Overlay) == 0 {
			respondError(c, http.StatusInternalServerError,
				"stored comparison has no visualisation", nil)
			return
		}

		encoded := base64.StdEncoding.EncodeToString(result.Overlay)
		c.JSON(http.StatusOK, ResultResponse{
			Score:     result.Score,
			ImageData: "data:image/png;base64," + encoded,
		})
	}
}

func listComparisons(svc service.ComparisonService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := svc.ListResults(c.Request.Context())
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to list comparisons", err)
			return
		}
		c.JSON(http.StatusOK, ids)
	}
}

func listComparisonTypes(svc service.ComparisonService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.ComparisonKinds())
	}
}

func listVisualisationTypes(svc service.ComparisonService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.OverlayKinds())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// readUpload reads one multipart file field fully into memory.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file %q is empty", field)
	}
	return data, nil
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return cors.New(corsConfig)
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

	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: detail,
	})
}
