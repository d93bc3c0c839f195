package browser

import (
	"strings"

	"golang.org/x/net/html"
)

// entryClass marks a file entry in the widget's listing markup.
const entryClass = "file-entry"

// ParseListing extracts file names from the widget's listing response,
// an HTML fragment of entry elements. Names come from the data-name
// attribute when present, otherwise from the element text. Order and
// case are preserved as returned by the server.
func ParseListing(body string) []string {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var names []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, entryClass) {
			if name := entryName(n); name != "" {
				names = append(names, name)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return names
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func entryName(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "data-name" {
			return attr.Val
		}
	}
	return strings.TrimSpace(textContent(n))
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
