package infrastructure

import (
	"bytes"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ExtractPDFText pulls plain text out of a stored resume PDF for recruiter
// preview. Pages that fail to extract are skipped; the call only errors when
// no page yields any text.
func ExtractPDFText(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var sb strings.Builder
	extractedAny := false

	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			log.Debugf("skipping page %d: %v", i, err)
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			log.Debugf("skipping page %d: %v", i, err)
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil || pageText == "" {
			continue
		}
		extractedAny = true
		fmt.Fprintf(&sb, "--- Page %d ---\n", i)
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	if !extractedAny {
		return "", fmt.Errorf("no text could be extracted from any page of the PDF")
	}
	return strings.TrimSpace(sb.String()), nil
}
