package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

type SourceKind string

const (
	SourceArxiv SourceKind = "arxiv"
	SourceURL   SourceKind = "url"
	SourceFile  SourceKind = "file"
)

var ErrInvalidSource = errors.New("invalid source")

var arxivPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/([0-9]+\.[0-9]+)(v\d+)?`)

type Source struct {
	Kind    SourceKind
	Locator string
	// CanonicalId is known up front only for arXiv links.
	CanonicalId string
	FileName    string
	// Uploaded files live in the upload dir and are removed after ingestion.
	Uploaded bool
}

// ParseSource classifies a user supplied locator.
func ParseSource(locator string) (Source, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return Source{}, fmt.Errorf("%w: empty locator", ErrInvalidSource)
	}

	if m := arxivPattern.FindStringSubmatch(locator); m != nil {
		return Source{Kind: SourceArxiv, Locator: locator, CanonicalId: m[1]}, nil
	}

	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		u, err := url.Parse(locator)
		if err != nil || u.Host == "" {
			return Source{}, fmt.Errorf("%w: malformed url %q", ErrInvalidSource, locator)
		}
		return Source{Kind: SourceURL, Locator: locator, FileName: filepath.Base(u.Path)}, nil
	}

	if strings.Contains(locator, "://") {
		return Source{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidSource, locator)
	}
	if getDocType(locator) == commonModels.ERR {
		return Source{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidSource, filepath.Ext(locator))
	}
	return Source{Kind: SourceFile, Locator: locator, FileName: filepath.Base(locator)}, nil
}

// ArxivId extracts the canonical id from an arXiv link, without version suffix.
func ArxivId(locator string) (string, bool) {
	m := arxivPattern.FindStringSubmatch(locator)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DocumentIdFromTitle is the fallback identity for sources without a canonical id.
func DocumentIdFromTitle(title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return "doc-" + hex.EncodeToString(sum[:])[:16]
}

const maxTitleLength = 200

// DetectTitle returns the first level one heading, else the first short non-empty line.
func DetectTitle(md string) string {
	var firstLine string
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.Trim(trimmed[2:], "* "))
		}
		if firstLine == "" && len(trimmed) <= maxTitleLength {
			firstLine = strings.TrimSpace(strings.Trim(trimmed, "#* "))
		}
	}
	return firstLine
}
