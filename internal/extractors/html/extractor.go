// Package html extracts the readable text of HTML documents as a single page.
package html

import (
	"context"
	"fmt"
	"html"
	"iter"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles saved web pages and HTML exports.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Pages yields the page title and visible text as page 1, or nothing if
// the document has no text.
func (e *Extractor) Pages(ctx context.Context, path string) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.Page{}, err)
			return
		}

		data, err := os.ReadFile(path)
		if err != nil {
			yield(domain.Page{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
			return
		}

		text := Text(string(data))
		if title := Title(string(data)); title != "" && !strings.HasPrefix(text, title) {
			text = strings.TrimSpace(title + "\n" + text)
		}
		if text == "" {
			return
		}
		yield(domain.Page{Number: 1, Text: text}, nil)
	}
}

var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|td|th|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	lineBreaks        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t\r]+`)
)

// Title returns the decoded <title>, or "".
func Title(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(multiSpaces.ReplaceAllString(html.UnescapeString(matches[1]), " "))
}

// Text strips markup and returns the visible text, one block per line.
func Text(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, htmlComments} {
		content = re.ReplaceAllString(content, "")
	}

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
