package routes

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pptx-quiz-service/middleware"
	"pptx-quiz-service/services"
	"pptx-quiz-service/utils"
)

// PDFConverter converts presentation bytes to PDF bytes.
type PDFConverter interface {
	ConvertToPDF(ctx context.Context, pptxData []byte) ([]byte, error)
}

// HTMLRenderer renders markup to PDF bytes.
type HTMLRenderer func(ctx context.Context, html string) ([]byte, error)

type directConvertRequest struct {
	PptxBase64 string `json:"pptxBase64"`
}

type renderRequest struct {
	HTML string `json:"html"`
}

// SetupConvertRoutes registers the stateless document-conversion endpoints.
// The multipart and HTML endpoints are called from browsers and require a
// bearer token; the base64 endpoint is for trusted server-to-server calls.
func SetupConvertRoutes(router *gin.Engine, converter PDFConverter, renderHTML HTMLRenderer, authMiddleware *middleware.AuthMiddleware) {
	preflight := middleware.CORSPreflightHandler()

	convertPDF := func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "file field is required", nil)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "failed to read upload", gin.H{"error": err.Error()})
			return
		}
		defer file.Close()

		pptxData, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "failed to read upload", gin.H{"error": err.Error()})
			return
		}

		pdfData, err := converter.ConvertToPDF(c.Request.Context(), pptxData)
		if err != nil {
			respondConversionError(c, err)
			return
		}

		c.Header("Access-Control-Allow-Origin", "*")
		c.Data(http.StatusOK, "application/pdf", pdfData)
	}

	router.POST("/convert-pdf", preflight, authMiddleware.RequireAuth(), convertPDF)
	router.OPTIONS("/convert-pdf", preflight)

	router.POST("/convert-to-pdf-direct", func(c *gin.Context) {
		var req directConvertRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.PptxBase64 == "" {
			utils.RespondWithBadRequest(c, "pptxBase64 is required", nil)
			return
		}

		pptxData, err := base64.StdEncoding.DecodeString(req.PptxBase64)
		if err != nil {
			utils.RespondWithBadRequest(c, "pptxBase64 is not valid base64", nil)
			return
		}

		pdfData, err := converter.ConvertToPDF(c.Request.Context(), pptxData)
		if err != nil {
			respondConversionError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"pdfBase64": base64.StdEncoding.EncodeToString(pdfData),
		})
	})

	renderPDF := func(c *gin.Context) {
		var req renderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.HTML == "" {
			utils.RespondWithBadRequest(c, "html field is required", nil)
			return
		}

		pdfData, err := renderHTML(c.Request.Context(), req.HTML)
		if err != nil {
			utils.RespondWithInternalError(c, "HTML rendering failed", gin.H{"error": err.Error()})
			return
		}

		c.Header("Access-Control-Allow-Origin", "*")
		c.Data(http.StatusOK, "application/pdf", pdfData)
	}

	router.POST("/render-pdf", preflight, authMiddleware.RequireAuth(), renderPDF)
	router.OPTIONS("/render-pdf", preflight)
}

// respondConversionError maps subprocess outcomes to distinct statuses:
// timeout 504, converter failure and missing output 500.
func respondConversionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrConversionTimeout):
		utils.RespondWithGatewayTimeout(c, "PDF conversion timed out (120s)")
	case errors.Is(err, services.ErrNoConvertedPDF):
		utils.RespondWithInternalError(c, "Converted PDF not found", nil)
	default:
		utils.RespondWithInternalError(c, "PDF conversion failed", gin.H{"error": err.Error()})
	}
}
