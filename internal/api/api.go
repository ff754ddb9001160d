// Package api exposes the certificate checker over HTTP.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/errors"
	"github.com/TykTechnologies/certexpiry/internal/healthcheck"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	// maxRequestBytes bounds a POST /check body.
	maxRequestBytes = 1 << 20
)

// CheckRequest is the body of POST /check.
type CheckRequest struct {
	Hosts []hostconfig.HostSpec `json:"hosts"`
	Each  bool                  `json:"each"`
}

// CheckResponse is returned for an all-or-nothing check.
type CheckResponse struct {
	Results []checker.CheckResult `json:"results"`
}

// OutcomesResponse is returned for a per-host check.
type OutcomesResponse struct {
	Outcomes []OutcomeResponse `json:"outcomes"`
}

// OutcomeResponse is one host of an OutcomesResponse.
type OutcomeResponse struct {
	Index  int                     `json:"index"`
	Host   hostconfig.ResolvedHost `json:"host"`
	Result *checker.CheckResult    `json:"result,omitempty"`
	Error  *ErrorResponse          `json:"error,omitempty"`
}

// ErrorResponse describes a failure.
type ErrorResponse struct {
	Message        string                 `json:"message"`
	Host           string                 `json:"host,omitempty"`
	Classification *errors.Classification `json:"classification,omitempty"`
}

func apiError(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

func checkError(err error) ErrorResponse {
	resp := ErrorResponse{Message: err.Error()}

	var connErr *checker.ConnectionError
	var malformedErr *checker.MalformedCertificateError
	switch {
	case errors.As(err, &connErr):
		resp.Host = connErr.Host
		resp.Classification = connErr.Classification
	case errors.As(err, &malformedErr):
		resp.Host = malformedErr.Host
	}
	return resp
}

// Server serves the checker API.
type Server struct {
	checker *checker.Checker
	health  *healthcheck.Runner
	logger  *logrus.Entry
	router  *mux.Router
}

// New returns a Server with its routes registered.
func New(c *checker.Checker, health *healthcheck.Runner, logger *logrus.Entry) *Server {
	s := &Server{
		checker: c,
		health:  health,
		logger:  logger.WithField("prefix", "api"),
		router:  mux.NewRouter(),
	}

	s.router.HandleFunc("/check", s.checkHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/hello", s.helloHandler).Methods(http.MethodGet)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doJSONWrite(w, http.StatusMethodNotAllowed, apiError(http.StatusText(http.StatusMethodNotAllowed)))
	})
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doJSONWrite(w, http.StatusNotFound, apiError(http.StatusText(http.StatusNotFound)))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", addr).Info("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		return srv.Shutdown(context.Background())
	}
}

func (s *Server) checkHandler(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		doJSONWrite(w, http.StatusBadRequest, apiError("couldn't read request body"))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		doJSONWrite(w, http.StatusBadRequest, apiError("request body is not valid JSON"))
		return
	}
	if len(req.Hosts) == 0 {
		doJSONWrite(w, http.StatusBadRequest, apiError("hosts must not be empty"))
		return
	}

	s.logger.WithField("hosts", len(req.Hosts)).WithField("each", req.Each).Debug("Check requested")

	if req.Each {
		outcomes := s.checker.CheckEach(r.Context(), req.Hosts)
		doJSONWrite(w, http.StatusOK, OutcomesResponse{
			Outcomes: lo.Map(outcomes, func(o checker.Outcome, _ int) OutcomeResponse {
				resp := OutcomeResponse{Index: o.Index, Host: o.Host, Result: o.Result}
				if o.Err != nil {
					e := checkError(o.Err)
					resp.Error = &e
				}
				return resp
			}),
		})
		return
	}

	results, err := s.checker.CheckHosts(r.Context(), req.Hosts)
	if err != nil {
		doJSONWrite(w, http.StatusBadGateway, checkError(err))
		return
	}
	doJSONWrite(w, http.StatusOK, CheckResponse{Results: results})
}

func (s *Server) helloHandler(w http.ResponseWriter, r *http.Request) {
	res := s.health.Do(r.Context())
	doJSONWrite(w, res.StatusCode, res)
}

func doJSONWrite(w http.ResponseWriter, code int, obj any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
