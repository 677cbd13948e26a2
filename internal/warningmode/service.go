// Package warningmode toggles the remote warning mode setting.
package warningmode

import (
	"context"

	"warnmode/internal/webservice"
)

const (
	// Path is the endpoint, relative to the client's base URL.
	Path = "**.php"
	// Key is the payload field naming the requested mode.
	Key = "ChangeWaringMode"

	ModeOpen  = "open"
	ModeClose = "close"
)

// Response is the outcome of a mode change. Raw always holds the decoded
// reply. Current is nil when the reply lacks the fields ModeCurrentData
// needs; that is still a successful call.
type Response struct {
	Current *ModeCurrentData
	Raw     map[string]any
}

// Service issues warning mode changes through a shared webservice.Client.
type Service struct {
	client *webservice.Client
	path   string
}

// New returns a Service posting to Path.
func New(client *webservice.Client) *Service {
	return &Service{client: client, path: Path}
}

// NewWithPath returns a Service posting to a custom path.
func NewWithPath(client *webservice.Client, path string) *Service {
	if path == "" {
		path = Path
	}
	return &Service{client: client, path: path}
}

// ModeFor maps the requested state to its wire value.
func ModeFor(on bool) string {
	if on {
		return ModeOpen
	}
	return ModeClose
}

// Payload returns the request payload for the requested state.
func Payload(on bool) map[string]string {
	return map[string]string{Key: ModeFor(on)}
}

// ChangeWarningMode asks the remote side to open (on) or close the warning
// mode. completion runs once, on whatever goroutine finished the request.
func (s *Service) ChangeWarningMode(ctx context.Context, on bool, completion func(webservice.Result[Response])) {
	s.client.ExecuteDictionary(ctx, s.path, Payload(on), func(r webservice.Result[map[string]any]) {
		completion(toResponse(r))
	})
}

// Change is the blocking form of ChangeWarningMode.
func (s *Service) Change(ctx context.Context, on bool) (Response, error) {
	raw, err := s.client.DoDictionary(ctx, s.path, Payload(on))
	if err != nil {
		return Response{}, err
	}
	return toResponse(webservice.Ok(raw)).Get()
}

func toResponse(r webservice.Result[map[string]any]) webservice.Result[Response] {
	raw, err := r.Get()
	if err != nil {
		return webservice.Fail[Response](err)
	}
	current, _ := NewModeCurrentData(raw)
	return webservice.Ok(Response{Current: current, Raw: raw})
}
