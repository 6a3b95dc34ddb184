package intake

import (
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// parsedMessage is the flattened content of a parsed email: the plain text
// body plus any attachments worth carrying into the pipeline.
type parsedMessage struct {
	text        string
	attachments []core.Attachment
}

// extractMessageContent extracts the text body and attachments from an email
// message. For multipart messages it walks the parts, including nested
// multipart containers, collecting text/plain parts and attachment parts.
func extractMessageContent(msg *mail.Message) (*parsedMessage, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		// Not multipart (or an unparsable Content-Type): the whole body
		// is the text content
		body, err := decodePartBody(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return nil, err
		}
		charset := ""
		if params != nil {
			charset = params["charset"]
		}
		return &parsedMessage{text: decodeCharset(body, charset)}, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		body, err := io.ReadAll(msg.Body)
		if err != nil {
			return nil, err
		}
		return &parsedMessage{text: string(body)}, nil
	}

	parsed := &parsedMessage{}
	if err := walkMultipart(msg.Body, boundary, parsed); err != nil && parsed.text == "" && len(parsed.attachments) == 0 {
		return nil, err
	}

	if parsed.text == "" {
		parsed.text = "[No text content found in multipart message]"
	}
	return parsed, nil
}

// walkMultipart reads parts from a multipart body and feeds text parts and
// attachments into parsed. Nested multipart parts are walked recursively.
func walkMultipart(r io.Reader, boundary string, parsed *parsedMessage) error {
	mr := multipart.NewReader(r, boundary)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Keep whatever was collected before the malformed part
			return err
		}

		partType, partParams, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			partType = "text/plain"
		}

		if strings.HasPrefix(partType, "multipart/") {
			if nested, ok := partParams["boundary"]; ok {
				if err := walkMultipart(part, nested, parsed); err != nil {
					continue
				}
			}
			continue
		}

		disposition, dispParams, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		filename := part.FileName()
		if filename == "" {
			filename = dispParams["filename"]
		}

		isAttachment := disposition == "attachment" || filename != ""

		if isAttachment {
			data, err := decodePartBody(part, part.Header.Get("Content-Transfer-Encoding"))
			if err != nil {
				continue
			}
			decoded, derr := decodeEncodedHeader(filename)
			if derr == nil {
				filename = decoded
			}
			parsed.attachments = append(parsed.attachments, core.Attachment{
				Filename: filename,
				MimeType: partType,
				Size:     int64(len(data)),
				Data:     data,
			})
			continue
		}

		if strings.HasPrefix(partType, "text/plain") {
			body, err := decodePartBody(part, part.Header.Get("Content-Transfer-Encoding"))
			if err != nil {
				continue
			}
			parsed.text += decodeCharset(body, partParams["charset"]) + "\n"
		}
		// Skip other inline parts (text/html alternatives etc.)
	}
}

// decodePartBody reads a part body and reverses its transfer encoding
func decodePartBody(r io.Reader, transferEncoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		cleaned := strings.Map(func(c rune) rune {
			if c == '\r' || c == '\n' || c == ' ' || c == '\t' {
				return -1
			}
			return c
		}, string(raw))
		return base64.StdEncoding.DecodeString(cleaned)
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(r))
	default:
		return io.ReadAll(r)
	}
}

// decodeCharset converts a part body to UTF-8 using the declared charset.
// Unknown or missing charsets fall back to the bytes as-is, which covers
// UTF-8 and ASCII.
func decodeCharset(body []byte, charset string) string {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// decodeEncodedHeader decodes RFC 2047 encoded-word headers, resolving
// non-standard charsets through the HTML index (call sheets from Polish
// productions regularly arrive with iso-8859-2 subjects)
func decodeEncodedHeader(value string) (string, error) {
	dec := mime.WordDecoder{
		CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, err
			}
			return transform.NewReader(input, enc.NewDecoder()), nil
		},
	}
	return dec.DecodeHeader(value)
}
