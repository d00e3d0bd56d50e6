// Package markup extracts text from goquery selections the way the scraped pages need it.
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StrippedText trims every text node under sel and concatenates the non-empty pieces.
func StrippedText(sel *goquery.Selection) string {
	var out []string
	for _, s := range textNodes(sel) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "")
}

// JoinedText joins every text node under sel with sep, whitespace-only nodes included,
// and trims the result. Stored summaries are unique keys, so the spacing must stay stable.
func JoinedText(sel *goquery.Selection, sep string) string {
	return strings.TrimSpace(strings.Join(textNodes(sel), sep))
}

func textNodes(sel *goquery.Selection) []string {
	var out []string
	for _, node := range sel.Nodes {
		collect(node, &out)
	}
	return out
}

func collect(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		*out = append(*out, node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collect(child, out)
	}
}

// Attr returns the trimmed value of attribute name on the first element of sel.
func Attr(sel *goquery.Selection, name string) (string, bool) {
	v, ok := sel.Attr(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
