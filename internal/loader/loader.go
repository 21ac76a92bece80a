// Package loader reads raw source files (PDF, JSON Q&A exports) and emits
// normalized documents for the ingestion pipeline.
package loader

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

// PDFExtractor extracts per-page text from a PDF file.
type PDFExtractor func(path string) ([]string, error)

// Loader produces Documents from a directory of *.pdf and *.json files.
type Loader struct {
	dir             string
	extractPDF      PDFExtractor
	extractEntities bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithPDFExtractor overrides the PDF text extractor.
func WithPDFExtractor(fn PDFExtractor) Option {
	return func(l *Loader) { l.extractPDF = fn }
}

// WithEntityExtraction enables entity-list metadata on loaded documents.
func WithEntityExtraction() Option {
	return func(l *Loader) { l.extractEntities = true }
}

func New(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:        dir,
		extractPDF: extractPDFPages,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all PDF and JSON sources under the loader's directory.
// Unreadable or empty sources are logged and skipped; Load never fails on a
// single bad file. The returned slice holds PDFs first, then JSON documents,
// each in lexical filename order.
func (l *Loader) Load() ([]domain.Document, error) {
	pdfFiles, err := filepath.Glob(filepath.Join(l.dir, "*.pdf"))
	if err != nil {
		return nil, err
	}
	jsonFiles, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var pdfDocs []domain.Document
	for _, path := range pdfFiles {
		doc, ok := l.loadPDF(path)
		if ok {
			pdfDocs = append(pdfDocs, doc)
		}
	}

	var jsonDocs []domain.Document
	for _, path := range jsonFiles {
		doc, ok := l.loadJSON(path)
		if ok {
			jsonDocs = append(jsonDocs, doc)
		}
	}

	log.Printf("loader: loaded %d PDF and %d JSON documents from %s", len(pdfDocs), len(jsonDocs), l.dir)

	return append(pdfDocs, jsonDocs...), nil
}

func (l *Loader) newDocument(content, source string) domain.Document {
	metadata := domain.Metadata{domain.MetaSource: source}
	if l.extractEntities {
		addEntityMetadata(metadata, content)
	}
	return domain.Document{Content: content, Metadata: metadata}
}

func (l *Loader) loadPDF(path string) (domain.Document, bool) {
	pages, err := l.extractPDF(path)
	if err != nil {
		log.Printf("loader: failed to extract text from PDF %s: %v", path, err)
		return domain.Document{}, false
	}

	var parts []string
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			log.Printf("loader: no text extracted from page %d of %s", i, path)
			continue
		}
		parts = append(parts, page)
	}

	content := strings.Join(parts, "\n")
	if strings.TrimSpace(content) == "" {
		log.Printf("loader: no text extracted from PDF %s", path)
		return domain.Document{}, false
	}

	return l.newDocument(content, path), true
}
