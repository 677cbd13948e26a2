// Package stub is a local stand-in for the remote warning mode service. It
// accepts the same form-wrapped JSON the client sends and keeps the mode in a
// Store.
package stub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	dbpkg "warnmode/internal/db"
	"warnmode/internal/httpx"
	"warnmode/internal/logx"
	"warnmode/internal/telemetry"
	"warnmode/internal/warningmode"
	"warnmode/internal/webservice"
)

const maxBody = 64 << 10

// Store keeps the current warning mode and its change log.
type Store interface {
	CurrentMode(ctx context.Context) (string, error)
	SetMode(ctx context.Context, mode, requestID string) error
	ListChanges(ctx context.Context, limit int) ([]dbpkg.Change, error)
}

// Options configures the stub handler.
type Options struct {
	// Path is the change endpoint relative to the server root.
	// Defaults to warningmode.Path.
	Path string
	// Limiter throttles change requests. Defaults to 5 per second.
	Limiter *rate.Limiter
}

type changeRequest struct {
	Mode string `json:"ChangeWaringMode" validate:"required,oneof=open close"`
}

type changeReply struct {
	Success string `json:"success"`
	Mode    string `json:"waringmode"`
	Message string `json:"message"`
}

type server struct {
	store    Store
	path     string
	limiter  *rate.Limiter
	validate *validator.Validate
}

// New returns the stub service handler.
func New(store Store, opts Options) http.Handler {
	s := &server{
		store:    store,
		path:     strings.TrimPrefix(opts.Path, "/"),
		limiter:  opts.Limiter,
		validate: newValidator(),
	}
	if s.path == "" {
		s.path = warningmode.Path
	}
	if s.limiter == nil {
		s.limiter = rate.NewLimiter(rate.Every(time.Second), 5)
	}

	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(telemetry.HTTP)
	r.Get("/healthz", s.health)
	r.Get("/changes", s.changes)
	// chi treats '*' as a wildcard, so the change path is matched by hand.
	r.Post("/*", s.change)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Write(w, r, httpx.NotFound("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		httpx.Write(w, r, httpx.MethodNotAllowed("method not allowed"))
	})
	return r
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *server) change(w http.ResponseWriter, r *http.Request) {
	if strings.TrimPrefix(r.URL.Path, "/") != s.path {
		httpx.Write(w, r, httpx.NotFound("not found"))
		return
	}
	if !s.limiter.Allow() {
		httpx.Write(w, r, httpx.TooManyRequests("too many mode changes"))
		return
	}
	req, herr := s.decode(w, r)
	if herr != nil {
		httpx.Write(w, r, herr)
		return
	}
	ctx := r.Context()
	if err := s.store.SetMode(ctx, req.Mode, httpx.RequestID(ctx)); err != nil {
		logx.From(ctx).Error().Err(err).Msg("store warning mode")
		httpx.Write(w, r, httpx.Internal(errors.New("could not store warning mode")))
		return
	}
	logx.From(ctx).Info().
		Str("requestId", httpx.RequestID(ctx)).
		Str("waringmode", req.Mode).
		Msg("warning mode changed")
	httpx.JSON(w, http.StatusOK, changeReply{
		Success: "1",
		Mode:    req.Mode,
		Message: "warning mode " + req.Mode,
	})
}

// decode reads a "message=<json>" body. The JSON is normally sent raw; a
// percent-encoded value is accepted too.
func (s *server) decode(w http.ResponseWriter, r *http.Request) (*changeRequest, *httpx.HTTPError) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return nil, httpx.BadRequest("could not read body")
	}
	raw, ok := strings.CutPrefix(string(b), webservice.FormField+"=")
	if !ok {
		return nil, httpx.BadRequest("missing message field")
	}
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		if unescaped, err := url.QueryUnescape(raw); err == nil {
			raw = unescaped
		}
	}
	var req changeRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, httpx.BadRequest("message is not a JSON object")
	}
	if err := s.validate.Struct(&req); err != nil {
		details := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				details[fe.Field()] = fe.Tag()
			}
		}
		return nil, httpx.BadRequest("validation failed").WithDetails(details)
	}
	return &req, nil
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	mode, err := s.store.CurrentMode(r.Context())
	if err != nil {
		httpx.Write(w, r, httpx.Internal(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "waringmode": mode})
}

// changes lists recorded mode changes, newest first. ?limit=N caps the list.
func (s *server) changes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.Write(w, r, httpx.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}
	list, err := s.store.ListChanges(r.Context(), limit)
	if err != nil {
		logx.From(r.Context()).Error().Err(err).Msg("list warning mode changes")
		httpx.Write(w, r, httpx.Internal(errors.New("could not list changes")))
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
