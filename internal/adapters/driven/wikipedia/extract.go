package wikipedia

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// combiningAcute marks stress in Russian articles; it breaks plain-text
// display and search, so it is removed from summaries.
const combiningAcute = "\u0301"

// firstParagraph returns the text of the first non-empty <p> element of an
// extract, or "" if there is none.
func firstParagraph(extract string) string {
	doc, err := html.Parse(strings.NewReader(extract))
	if err != nil {
		return ""
	}

	var found string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			if text := strings.TrimSpace(textOf(n)); text != "" {
				found = text
				return true
			}
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return strings.ReplaceAll(found, combiningAcute, "")
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
