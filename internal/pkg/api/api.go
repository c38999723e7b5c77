// Package api exposes the diff/patch library over HTTP: a thin gin service
// suitable for computing or applying a delta as a network call instead of a
// local library invocation.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unbasical/qbsdiff/docs"
	"github.com/unbasical/qbsdiff/pkg/bsdiff"
)

// NewRouter builds the gin engine exposing the diff/patch HTTP surface,
// with a Swagger UI mounted at /swagger/index.html.
//
// @title qbsdiff HTTP API
// @version 1.0
// @description Computes and applies BSDIFF40 patches over HTTP.
// @BasePath /
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.POST("/v1/diff", handleDiff)
	r.POST("/v1/patch", handlePatch)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("handled request")
	}
}

// handleDiff computes a patch from an uploaded source and target.
//
// @Summary Compute a patch
// @Description Diffs two uploaded files and streams back a BSDIFF40 patch.
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param source formData file true "source buffer"
// @Param target formData file true "target buffer"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /v1/diff [post]
func handleDiff(c *gin.Context) {
	source, err := readFormFile(c, "source")
	if err != nil {
		respondErr(c, err)
		return
	}
	target, err := readFormFile(c, "target")
	if err != nil {
		respondErr(c, err)
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if err := bsdiff.NewDiffer(source, target).Compare(c.Writer); err != nil {
		logrus.WithError(err).Error("diff request failed after headers were sent")
	}
}

// handlePatch applies an uploaded patch to an uploaded source.
//
// @Summary Apply a patch
// @Description Applies an uploaded BSDIFF40 patch to an uploaded source and streams back the target.
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param source formData file true "source buffer"
// @Param patch formData file true "BSDIFF40 patch"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /v1/patch [post]
func handlePatch(c *gin.Context) {
	source, err := readFormFile(c, "source")
	if err != nil {
		respondErr(c, err)
		return
	}
	patchBytes, err := readFormFile(c, "patch")
	if err != nil {
		respondErr(c, err)
		return
	}

	p, err := bsdiff.NewPatch(bytes.NewReader(patchBytes), int64(len(patchBytes)))
	if err != nil {
		respondErr(c, wrapErr(ErrBadRequest, err))
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if err := p.Apply(source, c.Writer); err != nil {
		logrus.WithError(err).Error("patch request failed after headers were sent")
	}
}

func readFormFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, wrapErr(ErrMissingRequestBody, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, wrapErr(ErrInternal, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, wrapErr(ErrInternal, err)
	}
	return data, nil
}

func wrapErr(kind, cause error) error {
	return fmt.Errorf("%w: %v", kind, cause) //nolint:errorlint
}

func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrMissingRequestBody), errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
