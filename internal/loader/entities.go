package loader

import (
	"regexp"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
)

var (
	// Numeric dates (12/03/2024, 12-03-24) and written-out Spanish dates
	// (12 de marzo de 2024).
	numericDateRe = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	writtenDateRe = regexp.MustCompile(`(?i)\b\d{1,2} de (?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)(?: de \d{4})?\b`)

	// Capitalized spans following a personal honorific.
	personRe = regexp.MustCompile(`\b(?:Sr\.|Sra\.|Srta\.|Don|Doña)\s+(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)*)`)

	// Capitalized spans carrying a corporate marker.
	orgRe = regexp.MustCompile(`\b(?:AFP|Banco|Compañía|Superintendencia)(?:\s+(?:de|del|la|las|los))*(?:\s+\p{Lu}[\p{L}]+)+|\b\p{Lu}[\p{L}]+(?:\s+\p{Lu}[\p{L}]+)*\s+(?:S\.A\.|Ltda\.)`)

	// Capitalized spans after a locative preposition.
	locationRe = regexp.MustCompile(`\b(?:en|desde|hacia|hasta)\s+(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)?)\b`)
)

// addEntityMetadata attaches persons/organizations/locations/dates lists to
// the metadata when the corresponding patterns match. Heuristic by design of
// the patterns above; a key is only set when at least one entity was found.
func addEntityMetadata(metadata domain.Metadata, content string) {
	if dates := uniqueMatches(append(numericDateRe.FindAllString(content, -1), writtenDateRe.FindAllString(content, -1)...)); len(dates) > 0 {
		metadata[domain.MetaDates] = dates
	}
	if persons := uniqueSubmatches(personRe.FindAllStringSubmatch(content, -1)); len(persons) > 0 {
		metadata[domain.MetaPersons] = persons
	}
	if orgs := uniqueMatches(orgRe.FindAllString(content, -1)); len(orgs) > 0 {
		metadata[domain.MetaOrganizations] = orgs
	}
	if locations := uniqueSubmatches(locationRe.FindAllStringSubmatch(content, -1)); len(locations) > 0 {
		metadata[domain.MetaLocations] = locations
	}
}

func uniqueMatches(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func uniqueSubmatches(matches [][]string) []string {
	flat := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			flat = append(flat, m[1])
		}
	}
	return uniqueMatches(flat)
}
