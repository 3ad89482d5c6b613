package mailbox

import (
	"fmt"
	"io"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // register common legacy charsets
	"github.com/emersion/go-message/mail"
)

// readBody extracts readable text from a raw RFC 822 message. The first
// text/plain part wins; raw text/html is the fallback when that is all the
// sender provided. Unknown charsets skip the affected part instead of
// failing the whole message.
func readBody(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("read message: %w", err)
	}
	if mr == nil {
		return "", fmt.Errorf("read message: %w", err)
	}

	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return "", fmt.Errorf("read part: %w", err)
		}
		if p == nil {
			continue
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue // attachments carry nothing classifiable
		}
		ct, _, err := h.ContentType()
		if err != nil {
			continue
		}

		b, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		switch ct {
		case "text/plain":
			if plain == "" {
				plain = string(b)
			}
		case "text/html":
			if html == "" {
				html = string(b)
			}
		}
		if plain != "" {
			break
		}
	}

	if plain != "" {
		return plain, nil
	}
	return html, nil
}
