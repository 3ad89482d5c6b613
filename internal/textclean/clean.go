// Package textclean normalizes raw email text for the bag-of-words features.
// The cleaning order matters: markup is stripped before line-based filtering,
// and URLs/addresses are blanked before whitespace collapsing so their removal
// never glues neighboring words together.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Common footer/boilerplate fragments. Their presence is noise for the
// classifier regardless of surrounding words.
var boilerplateRe = regexp.MustCompile(`(?i)(unsubscribe|view in browser|privacy policy|manage preferences|` +
	`update preferences|terms of service|do not reply|no[- ]reply|` +
	`confidentiality notice|to stop receiving|footer address|mailing address|` +
	`sent from my (iphone|ipad|android)|get the app|view online)`)

// URLs and bare addresses: only their presence matters, not their content.
var urlOrEmailRe = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|[\w.-]+@[\w.-]+)`)

var (
	quotedAttribRe = regexp.MustCompile(`(?i)^on .+ wrote:$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Clean turns raw email text into a canonical lowercase token stream:
// markup stripped, quoted-reply lines dropped, boilerplate and URLs/addresses
// blanked, whitespace collapsed. Empty input returns "". Pure and
// deterministic.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	t := stripMarkup(text)
	t = dropQuotedLines(t)
	t = boilerplateRe.ReplaceAllString(t, " ")
	t = urlOrEmailRe.ReplaceAllString(t, " ")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}

// stripMarkup extracts the text content of HTML, separating block structure
// with single spaces. Plain text passes through unchanged apart from entity
// decoding. The parser is error-tolerant, so malformed markup still yields
// its visible text.
func stripMarkup(text string) string {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String()
}

// dropQuotedLines removes typical quoted-reply lines: lines starting with
// one or more ">" markers and "On ... wrote:" attribution lines.
func dropQuotedLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") || quotedAttribRe.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
