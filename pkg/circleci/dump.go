package circleci

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
)

// RequestRecord is the captured form of a dispatched HTTP request. The
// Authorization and Circle-Token header values are redacted before the
// record is stored, so the raw token never enters a record.
type RequestRecord struct {
	Method        string              `json:"method"                   yaml:"method"`
	URL           string              `json:"url"                      yaml:"url"`
	Headers       map[string][]string `json:"headers,omitempty"        yaml:"headers,omitempty"`
	Body          string              `json:"body,omitempty"           yaml:"body,omitempty"`
	BodyTruncated bool                `json:"body_truncated,omitempty" yaml:"body_truncated,omitempty"`
}

// ResponseRecord is the captured form of a received HTTP response.
type ResponseRecord struct {
	StatusCode    int                 `json:"status_code"              yaml:"status_code"`
	Status        string              `json:"status"                   yaml:"status"`
	Headers       map[string][]string `json:"headers,omitempty"        yaml:"headers,omitempty"`
	Body          string              `json:"body,omitempty"           yaml:"body,omitempty"`
	BodyTruncated bool                `json:"body_truncated,omitempty" yaml:"body_truncated,omitempty"`
}

// Exchange pairs the most recent request with its response. When the request
// failed below the HTTP layer, Response is nil and Error holds the failure.
// After retries, the exchange reflects the final attempt only.
type Exchange struct {
	Request  *RequestRecord  `json:"request"            yaml:"request"`
	Response *ResponseRecord `json:"response,omitempty" yaml:"response,omitempty"`
	Duration time.Duration   `json:"duration"           yaml:"duration"`
	Error    string          `json:"error,omitempty"    yaml:"error,omitempty"`
}

// Introspector exposes the last request/response pair a client instance
// dispatched. The state is per-instance and last-writer-wins under
// concurrent use; callers needing per-call introspection use separate client
// instances.
type Introspector interface {
	// LastExchange returns a copy of the most recent exchange, or nil before
	// the first request.
	LastExchange() *Exchange
	// LastRequest returns the request half of the most recent exchange.
	LastRequest() *RequestRecord
	// LastResponse returns the response half of the most recent exchange, or
	// nil when it failed before a response arrived.
	LastResponse() *ResponseRecord
	// DumpLastExchange writes a readable rendering of the most recent
	// exchange. Output never contains the raw token.
	DumpLastExchange(w io.Writer) error
}

// Dump writes the exchange in a verbose-curl style: request lines prefixed
// with "> ", response lines with "< ", bodies verbatim.
func (e *Exchange) Dump(w io.Writer) error {
	if e == nil || e.Request == nil {
		_, err := fmt.Fprintln(w, "no requests recorded")

		return err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "> %s %s\n", e.Request.Method, e.Request.URL)
	writePrefixedHeaders(&b, "> ", e.Request.Headers)
	b.WriteString(">\n")

	if e.Request.Body != "" {
		b.WriteString(e.Request.Body)
		b.WriteString("\n")
	}

	switch {
	case e.Response != nil:
		fmt.Fprintf(&b, "< %s\n", e.Response.Status)
		writePrefixedHeaders(&b, "< ", e.Response.Headers)
		b.WriteString("<\n")

		if e.Response.Body != "" {
			b.WriteString(e.Response.Body)
			b.WriteString("\n")
		}
	case e.Error != "":
		fmt.Fprintf(&b, "< error: %s\n", e.Error)
	}

	fmt.Fprintf(&b, "elapsed: %s\n", e.Duration)

	_, err := io.WriteString(w, b.String())

	return err
}

// writePrefixedHeaders renders headers in sorted order so dumps are stable.
func writePrefixedHeaders(b *strings.Builder, prefix string, headers map[string][]string) {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range headers[key] {
			fmt.Fprintf(b, "%s%s: %s\n", prefix, key, value)
		}
	}
}

// SprintJSON renders v as indented JSON using the API's own field names.
func SprintJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", strings.Repeat(" ", constants.JSONIndentSize))
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}

	return string(data), nil
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v interface{}) error {
	out, err := SprintJSON(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, out)

	return err
}
