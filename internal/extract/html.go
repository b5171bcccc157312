package extract

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/BumpyClock/netindexer"
)

// decodeHTML scans headers in wire order, capturing the Server header value
// and gzip-decompressing the body into decoded HTML once a Content-Encoding
// header is found. Header scanning stops at the first Content-Encoding seen
// (whether it resolves to gzip or not); a Server header is only captured if
// it appears before that point, matching the reference extractor's
// single-pass header scan.
func decodeHTML(headers netindexer.Headers, body []byte) (server, html string) {
	for _, h := range headers {
		lname := strings.ToLower(h.Name)
		switch lname {
		case "content-encoding":
			if strings.EqualFold(h.Value, "gzip") {
				raw, err := gunzipAll(body)
				if err != nil {
					return server, ""
				}
				html = decodeUTF8Replace(raw)
			}
			return server, html
		case "server":
			server = h.Value
		}
	}
	return server, html
}

func gunzipAll(body []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// decodeUTF8Replace decodes b as UTF-8, substituting U+FFFD for any invalid
// byte sequence rather than dropping it.
func decodeUTF8Replace(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
			i++
			continue
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String()
}
