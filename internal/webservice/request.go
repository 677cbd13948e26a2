package webservice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"warnmode/internal/logx"
)

// FormField is the single form field that carries the JSON payload.
const FormField = "message"

// marshalPayload is a variable so tests can force a serialization failure.
// '<', '>' and '&' are sent unescaped.
var marshalPayload = func(v map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// BuildRequest resolves path against the base URL and returns a POST
// request whose body is "message=<json>". The JSON is sent as is, without
// percent-encoding. A path that does not parse yields a KindBadURL error.
func (c *Client) BuildRequest(ctx context.Context, path string, payload map[string]string) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, badURL(path, err)
	}
	u := c.base.ResolveReference(ref)

	var encoded []byte
	if payload != nil {
		encoded, err = marshalPayload(payload)
		if err != nil {
			logx.From(ctx).Error().Err(err).Str("path", path).Msg("encode payload")
			encoded = nil
		}
	}
	body := make([]byte, 0, len(FormField)+1+len(encoded))
	body = append(body, FormField+"="...)
	body = append(body, encoded...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, badURL(path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	return req, nil
}
