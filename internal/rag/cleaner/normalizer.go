// Package cleaner turns extracted article markdown into a stable form and pulls named sections out of it.
package cleaner

import (
	"regexp"
	"strings"
)

var (
	separatorLine = regexp.MustCompile(`^\s*(?:-{3,}|\*{3,}|_{3,}|={3,})\s*$`)
	numericLine   = regexp.MustCompile(`^[\d\s.,%]+$`)

	footnoteMarker  = regexp.MustCompile(`\*\[(?:,|\*|\d+)\]\*`)
	emphasisedPunct = regexp.MustCompile(`\*(?:,+|\s*[,.])\*`)
	boldHeading     = regexp.MustCompile(`(?m)^(#{1,6})\s*\*\*(.*?)\*\*\s*$`)
	asteriskRun     = regexp.MustCompile(`\*{3,}`)
	inlineSpace     = regexp.MustCompile(`[ \t\f\v]{2,}`)
	newlineRun      = regexp.MustCompile(`\n{3,}`)
)

// ReferenceAliases name the trailing sections dropped by Normalize.
var ReferenceAliases = []string{"bibliography", "literature cited"}

// Normalize cleans article markdown. Normalize(Normalize(x)) == Normalize(x) for every x.
//
// Every rewrite either leaves the text unchanged or makes it strictly shorter,
// so iterating until nothing changes terminates and yields a fixed point.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for {
		next := normalizePass(text)
		if next == text {
			return next
		}
		text = next
	}
}

func normalizePass(text string) string {
	text = TrimAfterSection(text, "references", ReferenceAliases...)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if separatorLine.MatchString(line) || numericLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = footnoteMarker.ReplaceAllString(text, "")
	text = emphasisedPunct.ReplaceAllString(text, "")
	text = boldHeading.ReplaceAllString(text, "$1 $2")
	text = asteriskRun.ReplaceAllString(text, "**")
	text = inlineSpace.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TrimAfterSection cuts md at the first heading line naming section (or an alias).
// Matching is case-insensitive and tolerates emphasis and numbering around the name.
func TrimAfterSection(md string, section string, aliases ...string) string {
	loc := sectionHeading(section, aliases).FindStringIndex(md)
	if loc == nil {
		return md
	}
	return md[:loc[0]]
}

func sectionHeading(section string, aliases []string) *regexp.Regexp {
	names := make([]string, 0, len(aliases)+1)
	for _, n := range append([]string{section}, aliases...) {
		names = append(names, regexp.QuoteMeta(n))
	}
	return regexp.MustCompile(`(?im)^#+\s*\**\s*(?:[0-9]+(?:\.[0-9]+)*\.?\s+|[ivx]+\.\s+)?(?:` +
		strings.Join(names, "|") + `)\b.*$`)
}
