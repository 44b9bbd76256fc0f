package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minParagraphLen drops short fragments (labels, boilerplate) that carry
// no retrievable content.
const minParagraphLen = 40

var (
	removeSelector  = "script, style, noscript, footer, nav"
	contentSelector = "h1, h2, h3, p, span, table"
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// FilingText converts SEC filing HTML into a structured plain-text
// representation: "[SECTION] <heading>" lines for headings, "[TABLE]"
// blocks with one " | "-joined line per row, and paragraph text longer
// than minParagraphLen. No tree structure is retained.
func FilingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse filing markup: %w", err)
	}

	doc.Find(removeSelector).Remove()

	var blocks []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3":
			blocks = append(blocks, "\n[SECTION] "+flatten(s.Text()))
		case "p", "span":
			txt := flatten(s.Text())
			if len(txt) > minParagraphLen {
				blocks = append(blocks, txt)
			}
		case "table":
			if rows := tableRows(s); len(rows) > 0 {
				blocks = append(blocks, "[TABLE]\n"+strings.Join(rows, "\n"))
			}
		}
	})

	text := strings.Join(blocks, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

func tableRows(table *goquery.Selection) []string {
	var rows []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, flatten(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	})
	return rows
}

// flatten collapses all runs of whitespace into single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
