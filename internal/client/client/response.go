package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// Value is the body parsed the forgiving way: map[string]any{} for an
	// empty body, the decoded JSON value, or the raw text.
	Value any
}

// Decode unmarshals the body into dst. An empty body decodes as {}.
func (r *Response) Decode(dst any) error {
	body := r.Body
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBody(body []byte) any {
	if len(body) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

// parsePayload is parseBody for error replies, where an empty body means
// there is no payload at all.
func parsePayload(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	return parseBody(body)
}

// errorMessage picks the message out of an error body: "detail" when it is
// a string (or the first FastAPI validation entry), then "message".
func errorMessage(body []byte, fallback string, withMessage bool) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String && detail.Str != "":
		return detail.Str
	case detail.IsArray():
		if msg := detail.Get("0.msg"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}

	if withMessage {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}

	return fallback
}
