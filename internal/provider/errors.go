package provider

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Error is an upstream provider failure: network, auth, rate limit or a
// malformed reply. Status is zero when the request never got an answer.
type Error struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) RateLimited() bool {
	return e.Status == 429
}

// errorMessage extracts a readable message from an upstream error body.
// Gateways in front of the providers sometimes answer with an HTML error
// page instead of JSON; in that case the page title is the most useful
// line we can show.
func errorMessage(contentType string, body []byte) string {
	if strings.Contains(contentType, "text/html") {
		if title := htmlTitle(body); title != "" {
			return title
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		// The cut may land inside a multi-byte rune; drop the remainder.
		msg = strings.ToValidUTF8(msg[:200], "")
	}
	if msg == "" {
		msg = "empty error response"
	}
	return msg
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}
