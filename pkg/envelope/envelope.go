// Package envelope extracts the visible transaction announcement and the
// receipt timestamp from a raw notification email.
package envelope

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CivilZone is the fixed civil timezone all timestamps are normalized to.
// Colombia does not observe DST, so a fixed offset is sufficient.
var CivilZone = time.FixedZone("America/Bogota", -5*60*60)

// messagePrefixes are the openings of the bank's announcement sentence.
// The announcement is the only segment of the flattened HTML we keep.
var messagePrefixes = []string{"Bancolombia", "Realizaste"}

const (
	// dateLayout matches headers like "Tue, 25 Jul 2023 01:07:29 +0000 (UTC)".
	dateLayout = "Mon, 2 Jan 2006 15:04:05 -0700 (MST)"
	// dateLayoutBare is the fallback once a trailing zone comment is stripped.
	dateLayoutBare = "Mon, 2 Jan 2006 15:04:05 -0700"
)

var zoneComment = regexp.MustCompile(` \([A-Z]{2,5}\)$`)

// Message is one inbound email reduced to the pieces the pipeline needs.
// It is built once at ingestion time and never modified.
type Message struct {
	// BodyText is the plain-text transaction announcement, empty when no
	// announcement was found.
	BodyText string
	// ReceivedAt is the Date header normalized to CivilZone.
	ReceivedAt time.Time
}

// Extract builds a Message from a raw RFC-822 payload. It never fails
// hard: unparseable mail degrades to an empty BodyText, which the
// validity gate downstream rejects.
func Extract(raw []byte, logger *slog.Logger) Message {
	if logger == nil {
		logger = slog.Default()
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		logger.Debug("unparseable mail payload", "error", err)
		return Message{}
	}

	received := parseDate(msg.Header.Get("Date"), logger)
	if received.IsZero() {
		// Without a receipt time there is no transaction timestamp to
		// assign, so the whole email is dropped.
		return Message{}
	}

	html, ok := findHTMLPart(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if !ok {
		logger.Debug("no html part in mail")
		return Message{ReceivedAt: received}
	}

	return Message{
		BodyText:   announcementText(html),
		ReceivedAt: received,
	}
}

// parseDate parses an RFC-2822-like Date header. The bank's relay appends
// a parenthetical zone abbreviation that Go's parser accepts for known
// names only, so a second pass strips the comment and reparses. A header
// neither layout accepts yields the zero time; the record identity
// includes the timestamp, so a made-up one must never enter the pipeline.
func parseDate(header string, logger *slog.Logger) time.Time {
	header = strings.TrimSpace(header)

	t, err := time.Parse(dateLayout, header)
	if err != nil {
		t, err = time.Parse(dateLayoutBare, zoneComment.ReplaceAllString(header, ""))
	}
	if err != nil {
		logger.Debug("unparseable date header", "header", header, "error", err)
		return time.Time{}
	}

	return t.In(CivilZone)
}

// findHTMLPart walks the MIME structure and returns the decoded content of
// the first text/html part.
func findHTMLPart(contentType, transferEncoding string, body io.Reader) (string, bool) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Plain bodies with no Content-Type still flow through untouched.
		mediaType = "text/plain"
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" {
			return "", false
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return "", false
			}
			html, ok := findHTMLPart(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				part,
			)
			if ok {
				return html, true
			}
		}

	case mediaType == "text/html":
		decoded, err := io.ReadAll(decodeBody(body, transferEncoding))
		if err != nil {
			return "", false
		}
		return string(decoded), true

	default:
		return "", false
	}
}

func decodeBody(body io.Reader, transferEncoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		return quotedprintable.NewReader(body)
	default:
		return body
	}
}

// announcementText flattens the HTML and picks out the announcement
// sentence. The bank's layout glues the sentence together with
// non-breaking spaces, so the flattened text is split on U+00A0 and the
// first segment starting with a known prefix wins.
func announcementText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, segment := range strings.Split(doc.Text(), " ") {
		trimmed := strings.TrimSpace(segment)
		for _, prefix := range messagePrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				return trimmed
			}
		}
	}

	return ""
}
