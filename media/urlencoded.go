package media

import (
	"bufio"
	"io"
	"net/url"
	"strings"
)

// URLEncoded is the built-in "key=value&key=value" format. Both keys and
// values are percent-decoded; blank keys are skipped; duplicate keys are
// retained in order. It implements both [Parser] and [Formatter].
type URLEncoded struct{}

// Parse implements [Parser].
func (URLEncoded) Parse(r io.Reader, emit Emit) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return SyntaxError("urlencoded", err)
	}

	body := strings.TrimRight(string(data), "\r\n")

	for _, part := range strings.Split(body, "&") {
		if part == "" {
			continue
		}

		key, value, _ := strings.Cut(part, "=")

		k, err := url.QueryUnescape(key)
		if err != nil {
			return SyntaxError("urlencoded", err)
		}

		if k == "" {
			continue
		}

		v, err := url.QueryUnescape(value)
		if err != nil {
			return SyntaxError("urlencoded", err)
		}

		if err := emit(Pair{Key: k, Value: v}); err != nil {
			return err
		}
	}

	return nil
}

// Format implements [Formatter].
func (URLEncoded) Format(w io.Writer, pairs []Pair) error {
	bw := bufio.NewWriter(w)

	for i, p := range pairs {
		if i > 0 {
			if err := bw.WriteByte('&'); err != nil {
				return err
			}
		}

		if _, err := bw.WriteString(url.QueryEscape(p.Key)); err != nil {
			return err
		}

		if err := bw.WriteByte('='); err != nil {
			return err
		}

		if _, err := bw.WriteString(url.QueryEscape(p.Value)); err != nil {
			return err
		}
	}

	return bw.Flush()
}
