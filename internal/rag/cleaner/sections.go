package cleaner

import (
	"regexp"
	"strings"
)

var (
	AbstractAliases   = []string{"absctract", "summary"}
	ConclusionAliases = []string{"conclusions", "closing remarks", "concluding remarks"}

	numberedHeading = regexp.MustCompile(`^(?:[0-9]+(?:\.[0-9]+)*\.?|[IVX]+\.)\s+\p{L}`)
	markup          = strings.NewReplacer("*", "", "#", "")
)

const maxHeadingLength = 80

// ExtractSection returns the body of the section called name (or one of its aliases), trimmed.
// The section ends at the next heading-like line or at the end of the text. A missing section yields "".
func ExtractSection(md string, name string, aliases ...string) string {
	start := sectionStart(name, aliases)
	lines := strings.Split(md, "\n")

	for i, line := range lines {
		if !start.MatchString(stripMarkup(line)) {
			continue
		}

		var body []string
		for _, next := range lines[i+1:] {
			if isHeading(next) {
				break
			}
			body = append(body, next)
		}
		return strings.TrimSpace(strings.Join(body, "\n"))
	}
	return ""
}

func Abstract(md string) string {
	return ExtractSection(md, "abstract", AbstractAliases...)
}

func Conclusion(md string) string {
	return ExtractSection(md, "conclusion", ConclusionAliases...)
}

func stripMarkup(line string) string {
	return strings.TrimSpace(markup.Replace(line))
}

// sectionStart matches a whole heading line: "Abstract", "2. Conclusion", "IV. Summary".
// Body text that merely begins with the name does not match.
func sectionStart(name string, aliases []string) *regexp.Regexp {
	names := make([]string, 0, len(aliases)+1)
	for _, n := range append([]string{name}, aliases...) {
		names = append(names, regexp.QuoteMeta(n))
	}
	return regexp.MustCompile(`(?i)^(?:[0-9]+(?:\.[0-9]+)*\.?|[ivx]+\.)?\s*(?:` +
		strings.Join(names, "|") + `)\s*$`)
}

// isHeading accepts markdown headings, bold-only lines and short numbered titles.
func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	if len(trimmed) > 4 && strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") &&
		!strings.Contains(trimmed[2:len(trimmed)-2], "**") {
		return true
	}
	stripped := stripMarkup(trimmed)
	return len(stripped) <= maxHeadingLength && numberedHeading.MatchString(stripped)
}
