package loader

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

// qaRecord is one entry of a question/answer export: the input is treated as
// a title and the output as its content.
type qaRecord struct {
	Input  *string `json:"input"`
	Output *string `json:"output"`
}

// loadJSON synthesizes one Document per JSON file, concatenating all valid
// records. Records missing input or output are skipped; a file that fails to
// parse is logged and excluded.
func (l *Loader) loadJSON(path string) (domain.Document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("loader: failed to read JSON file %s: %v", path, err)
		return domain.Document{}, false
	}

	var records []qaRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("loader: failed to decode JSON file %s: %v", path, err)
		return domain.Document{}, false
	}

	var parts []string
	for _, rec := range records {
		if rec.Input == nil || rec.Output == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("Título: %s\n\nContenido: %s", *rec.Input, *rec.Output))
	}

	content := strings.Join(parts, "\n")
	if strings.TrimSpace(content) == "" {
		log.Printf("loader: no text extracted from JSON file %s", path)
		return domain.Document{}, false
	}

	return l.newDocument(content, path), true
}
