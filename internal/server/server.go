// Package server exposes expression compilation and evaluation over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness and version
//	GET  /v1/functions   documentation of the registered functions
//	POST /v1/compile     source to IR
//	POST /v1/eval        evaluate source or IR against variables
//
// Compiled programs are cached by source and options, so rules that are
// evaluated repeatedly are only compiled once.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	exprun "github.com/jcormont/expression-runner"
	"github.com/jcormont/expression-runner/builtins"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
	"github.com/jcormont/expression-runner/object"
)

const (
	DefaultTimeout      = 5 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	DefaultCacheSize    = 4096
)

// Server handles evaluation requests. It is safe for concurrent use.
type Server struct {
	cache        *exprun.Cache
	logger       zerolog.Logger
	opts         []exprun.Option
	timeout      time.Duration
	maxBodyBytes int64
	cacheSize    int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEvalOptions sets options applied to every evaluation, such as host
// functions or a maximum frame depth.
func WithEvalOptions(opts ...exprun.Option) Option {
	return func(s *Server) {
		s.opts = append(s.opts, opts...)
	}
}

// WithTimeout limits the duration of each evaluation.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithCacheSize sets the number of compiled programs kept.
func WithCacheSize(n int) Option {
	return func(s *Server) {
		s.cacheSize = n
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		logger:       zerolog.Nop(),
		timeout:      DefaultTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
		cacheSize:    DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = exprun.NewCache(s.cacheSize)
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/functions", s.handleFunctions)
		r.Post("/compile", s.handleCompile)
		r.Post("/eval", s.handleEval)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": exprun.Version,
		"cache":   s.cache.Stats(),
	})
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"functions": builtins.Docs()})
}

// CompileRequest is the body of POST /v1/compile. The same fields select
// the source and syntax options of POST /v1/eval.
type CompileRequest struct {
	Expression      string `json:"expression"`
	AllowAssignment bool   `json:"allowAssignment"`
	AllowStatements bool   `json:"allowStatements"`
}

func (req CompileRequest) options() []exprun.Option {
	var opts []exprun.Option
	if req.AllowAssignment {
		opts = append(opts, exprun.WithAssignment())
	}
	if req.AllowStatements {
		opts = append(opts, exprun.WithStatements())
	}
	return opts
}

type CompileResponse struct {
	IR          json.RawMessage `json:"ir"`
	Fingerprint string          `json:"fingerprint"`
}

// EvalRequest is the body of POST /v1/eval. Either Expression or IR must be
// given.
type EvalRequest struct {
	CompileRequest
	IR   json.RawMessage `json:"ir,omitempty"`
	Vars map[string]any  `json:"vars"`
}

// EvalResponse holds the result and the variables after evaluation, which
// include assigned variables and $_.
type EvalResponse struct {
	Result json.RawMessage            `json:"result"`
	Vars   map[string]json.RawMessage `json:"vars,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.cache.Compile(req.Expression, req.options()...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := p.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, CompileResponse{IR: data, Fingerprint: p.Fingerprint()})
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req EvalRequest
	if !s.decode(w, r, &req) {
		return
	}
	var p *exprun.Program
	var err error
	if len(req.IR) > 0 {
		p, err = exprun.Load(req.IR, req.options()...)
	} else {
		p, err = s.cache.Compile(req.Expression, req.options()...)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	scope := object.FromGoMap(req.Vars)
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	result, err := p.Evaluate(ctx, scope, s.opts...)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := EvalResponse{Result: encodeValue(result), Vars: map[string]json.RawMessage{}}
	for name, value := range scope.Entries() {
		resp.Vars[name] = encodeValue(value)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// encodeValue converts a value the way JSON.stringify does. Values that
// JSON cannot hold, such as functions, become null.
func encodeValue(value object.Object) json.RawMessage {
	s, ok, err := object.ToJSON(value, "")
	if err != nil || !ok {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := ErrorBody{Message: err.Error()}
	if se, ok := errz.As(err); ok {
		body.Kind = se.Kind.String()
	}
	var fe errors.FormattableError
	if stderrors.As(err, &fe) {
		f := fe.ToFormatted()
		body.Code = string(f.Code)
		body.Line = f.Line
		body.Column = f.Column
		body.Hint = f.Hint
		if body.Kind == "" {
			body.Kind = f.Kind
		}
	}
	writeJSON(w, status, errorResponse{Error: body})
}
