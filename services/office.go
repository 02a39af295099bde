package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pptx-quiz-service/internal/config"
)

var (
	// ErrConversionTimeout: the office process exceeded its wall-clock bound.
	ErrConversionTimeout = errors.New("pdf conversion timed out")
	// ErrConversionFailed: the office process exited non-zero.
	ErrConversionFailed = errors.New("office conversion failed")
	// ErrNoConvertedPDF: the process exited cleanly but produced no file.
	ErrNoConvertedPDF = errors.New("converted pdf not found")
)

// OfficeConverter converts presentations to PDF through a headless office
// suite subprocess. Each call works in its own scratch directory which is
// removed on every exit path.
type OfficeConverter struct {
	bin     string
	timeout time.Duration
}

func NewOfficeConverter(cfg *config.Config) *OfficeConverter {
	return &OfficeConverter{
		bin:     cfg.SofficeBin,
		timeout: time.Duration(cfg.ConvertTimeoutSec) * time.Second,
	}
}

// ConvertToPDF writes the presentation bytes to a scratch file, runs the
// converter with a bounded deadline and returns the produced PDF bytes.
func (oc *OfficeConverter) ConvertToPDF(ctx context.Context, pptxData []byte) ([]byte, error) {
	scratchDir, err := os.MkdirTemp("", "pptx-convert-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratchDir)

	srcPath := filepath.Join(scratchDir, uuid.New().String()+".pptx")
	if err := os.WriteFile(srcPath, pptxData, 0o600); err != nil {
		return nil, err
	}

	outDir := filepath.Join(scratchDir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, oc.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, oc.bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, srcPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrConversionTimeout
		}
		return nil, fmt.Errorf("%w: %s", ErrConversionFailed, strings.TrimSpace(stderr.String()))
	}

	pdfPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(srcPath), ".pptx")+".pdf")
	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConvertedPDF
		}
		return nil, err
	}

	return pdfData, nil
}
