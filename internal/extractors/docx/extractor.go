// Package docx extracts paragraph text from Word documents as a single page.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const bodyPart = "word/document.xml"

// Extractor handles Office Open XML word processing documents.
// Word files carry no fixed pagination, so the body is page 1.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Pages yields the body text as page 1, or nothing if the body is empty.
func (e *Extractor) Pages(ctx context.Context, path string) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.Page{}, err)
			return
		}

		text, err := readBody(path)
		if err != nil {
			yield(domain.Page{}, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err))
			return
		}
		if text == "" {
			return
		}
		yield(domain.Page{Number: 1, Text: text}, nil)
	}
}

func readBody(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != bodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return parseBody(data)
	}
	return "", fmt.Errorf("missing %s", bodyPart)
}

type document struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type paragraph struct {
	Runs []struct {
		Text []string `xml:"t"`
	} `xml:"r"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t)
		}
	}
	return strings.TrimSpace(b.String())
}

// parseBody joins non-empty paragraphs with newlines; table cells follow the body text.
func parseBody(data []byte) (string, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	var lines []string
	add := func(ps []paragraph) {
		for _, p := range ps {
			if t := p.text(); t != "" {
				lines = append(lines, t)
			}
		}
	}

	add(doc.Body.Paragraphs)
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				add(cell.Paragraphs)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
