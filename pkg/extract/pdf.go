package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"go-interview-worker/pkg/logger"
)

// DocumentFallback extracts text from raw PDF bytes when the local text
// layer is missing, e.g. scanned documents.
type DocumentFallback interface {
	ExtractDocument(ctx context.Context, data []byte) (string, error)
}

// PDFExtractor converts uploaded documents into plain text. Plain .txt
// uploads pass through, PDFs go through unipdf first and the fallback
// second.
type PDFExtractor struct {
	fallback DocumentFallback
}

func NewPDFExtractor(fallback DocumentFallback) *PDFExtractor {
	return &PDFExtractor{fallback: fallback}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return string(data), nil
	}

	text, err := extractPDFText(data)
	if err == nil && text != "" {
		return text, nil
	}

	if e.fallback == nil {
		if err != nil {
			return "", err
		}
		return "", fmt.Errorf("no text could be extracted from %s", filepath.Base(path))
	}

	logger.Log.Warn("local PDF extraction found no text, using fallback",
		"path", path,
		"error", err,
	)
	return e.fallback.ExtractDocument(ctx, data)
}

func extractPDFText(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var builder strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			logger.Log.Warn("skipping unreadable PDF page", "page", i, "error", err)
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			logger.Log.Warn("skipping PDF page without extractor", "page", i, "error", err)
			continue
		}

		pageText, err := ex.ExtractText()
		if err != nil {
			logger.Log.Warn("failed to extract PDF page text", "page", i, "error", err)
			continue
		}

		if pageText != "" {
			builder.WriteString(pageText)
			builder.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", fmt.Errorf("no text layer found in PDF")
	}
	return result, nil
}
