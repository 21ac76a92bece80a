package chunker

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

// CategoryOf derives a grouping token from a document's source filename:
// the part before the first underscore, e.g. "pensiones_faq.json" groups
// under "pensiones".
func CategoryOf(doc domain.Document) string {
	base := filepath.Base(doc.Metadata.Source())
	if idx := strings.Index(base, "_"); idx > 0 {
		return base[:idx]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OrganizeTree groups documents by category. A grouping convenience only:
// it changes iteration order, never chunk content.
func OrganizeTree(docs []domain.Document) map[string][]domain.Document {
	tree := make(map[string][]domain.Document)
	for _, doc := range docs {
		category := CategoryOf(doc)
		tree[category] = append(tree[category], doc)
	}
	return tree
}

// FlattenTree returns the tree's documents in sorted category order.
func FlattenTree(tree map[string][]domain.Document) []domain.Document {
	categories := make([]string, 0, len(tree))
	for category := range tree {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var docs []domain.Document
	for _, category := range categories {
		docs = append(docs, tree[category]...)
	}
	return docs
}
