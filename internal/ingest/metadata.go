package ingest

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Metadata holds bibliographic fields detected from an article's
// filename and leading text. Absent fields are zero-valued.
type Metadata struct {
	Title   string
	Authors string
	Journal string
	Year    int
}

var (
	// authorPatterns match common author-line shapes in papers:
	// full names, initialled names, and explicit Author: headers.
	authorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s*,\s*[A-Z][a-z]+\s+[A-Z][a-z]+)+)`),
		regexp.MustCompile(`^([A-Z]\.\s*[A-Z][a-z]+(?:\s*,\s*[A-Z]\.\s*[A-Z][a-z]+)+)`),
		regexp.MustCompile(`(?i)Authors?:\s*(.+)`),
	}

	journalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:Published in|Journal[:\s]+)([A-Z][^,\n]+)`),
		regexp.MustCompile(`([A-Z][a-z]+\s+(?:Journal|Review|Letters|Medicine|Research|Science)[^,\n]*)`),
	}

	yearPattern = regexp.MustCompile(`\b(20[0-2][0-9])\b`)
)

// titleNoise marks lines that look like headers or footers rather
// than a title.
var titleNoise = []string{"abstract", "introduction", "doi:", "volume", "issue"}

// ExtractMetadata detects title, authors, journal, and year from the
// filename and the leading lines of the text. It is heuristic by
// design: wrong guesses only affect display and citations, never
// retrieval.
func ExtractMetadata(filename, text string) Metadata {
	lines := strings.Split(text, "\n")

	return Metadata{
		Title:   extractTitle(filename, lines),
		Authors: extractAuthors(lines),
		Journal: extractJournal(lines),
		Year:    extractYear(filename, lines),
	}
}

// extractTitle takes the first substantial leading line, falling back
// to a cleaned-up filename.
func extractTitle(filename string, lines []string) string {
	for _, line := range head(lines, 20) {
		line = strings.TrimSpace(line)
		if len(line) <= 10 || len(line) >= 200 {
			continue
		}
		if !unicode.IsUpper(rune(line[0])) {
			continue
		}
		if isNoiseLine(line) {
			continue
		}
		return line
	}

	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")
	return strings.TrimSpace(title)
}

func extractAuthors(lines []string) string {
	for _, line := range head(lines, 30) {
		for _, pattern := range authorPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			authors := strings.TrimSpace(match[1])
			if len(authors) > 10 && len(authors) < 500 {
				return authors
			}
		}
	}
	return ""
}

func extractJournal(lines []string) string {
	for _, line := range head(lines, 50) {
		for _, pattern := range journalPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			journal := strings.TrimSpace(match[1])
			if len(journal) > 5 && len(journal) < 200 {
				return journal
			}
		}
	}
	return ""
}

// extractYear prefers a year in the filename, then the most common
// year in the leading text, preferring recent publications.
func extractYear(filename string, lines []string) int {
	if m := yearPattern.FindStringSubmatch(filename); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}

	sample := strings.Join(head(lines, 50), "\n")
	matches := yearPattern.FindAllStringSubmatch(sample, -1)
	if len(matches) == 0 {
		return 0
	}

	counts := make(map[int]int)
	for _, m := range matches {
		year, _ := strconv.Atoi(m[1])
		counts[year]++
	}

	best := func(lo, hi int) int {
		year, count := 0, 0
		for y, c := range counts {
			if y < lo || y > hi {
				continue
			}
			if c > count || (c == count && y > year) {
				year, count = y, c
			}
		}
		return year
	}

	if y := best(2015, 2029); y != 0 {
		return y
	}
	return best(2000, 2029)
}

func isNoiseLine(line string) bool {
	lower := strings.ToLower(line)
	for _, noise := range titleNoise {
		if strings.Contains(lower, noise) {
			return true
		}
	}
	return false
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
