package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int
	Content string
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".txt", ".rtf":
		return commonModels.DOCX
	case ".md", ".markdown":
		return commonModels.MARKDOWN
	default:
		return commonModels.ERR
	}
}

// ExtractMarkdown turns a local file into markdown-ish text the normalizer understands.
func ExtractMarkdown(path string) (string, error) {
	switch getDocType(path) {
	case commonModels.PDF:
		pages, err := extractPDF(path)
		if err != nil {
			return "", err
		}
		return promoteHeadings(joinPages(pages)), nil
	case commonModels.DOCX:
		text, err := cat.File(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract document: %w", err)
		}
		return promoteHeadings(text), nil
	case commonModels.MARKDOWN:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read markdown: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidSource, filepath.Ext(path))
	}
}

func extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	if len(pages) == 0 {
		return nil, errors.New("pdf has no extractable text")
	}
	return pages, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("pdf reader panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PdfPageTimeout):
		return "", errors.New("page extraction timeout")
	}
}

func joinPages(pages []rawPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, strings.TrimSpace(p.Content))
	}
	return strings.Join(parts, "\n\n")
}

var knownSection = regexp.MustCompile(`(?i)^(?:(?:[0-9]+(?:\.[0-9]+)*\.?|[IVX]+\.)\s+)?` +
	`(abstract|introduction|related work|background|method(?:s|ology)?|approach|experiments?|results|` +
	`discussion|evaluation|conclusions?|concluding remarks|closing remarks|summary|acknowledge?ments?|` +
	`references|bibliography|appendix)\s*[.:]?$`)

// promoteHeadings marks short lines that name a well known paper section as markdown headings.
func promoteHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if knownSection.MatchString(trimmed) {
			lines[i] = "## " + strings.TrimRight(trimmed, ".:")
		}
	}
	return strings.Join(lines, "\n")
}
