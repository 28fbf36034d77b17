// Package api exposes the container patcher over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/melon/internal/logger"
	"github.com/samcharles93/melon/internal/version"
	"github.com/samcharles93/melon/pkg/melon"
)

const (
	DefaultMaxBodyBytes int64 = 512 << 20

	HeaderRequestID = "X-Request-Id"
	HeaderFileType  = "X-Melon-File-Type"
	HeaderTitle     = "X-Melon-Title"
	HeaderDelta     = "X-Melon-Delta"

	mimeOctetStream = "application/octet-stream"
)

var errBodyTooLarge = errors.New("request body too large")

// ErrorBody is the JSON payload of every error response.
type ErrorBody struct {
	Error ResponseError `json:"error"`
}

type ResponseError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

type Server struct {
	log          logger.Logger
	maxBodyBytes int64
}

func NewServer(log logger.Logger, maxBodyBytes int64) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{log: log, maxBodyBytes: maxBodyBytes}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/patch", s.handlePatch)
	e.POST("/v1/inspect", s.handleInspect)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Resolve(),
	})
}

func (s *Server) handlePatch(c *echo.Context) error {
	id := requestID(c)
	body, err := s.readBody(c)
	if err != nil {
		return s.writeError(c, id, err)
	}

	res, err := melon.Patch(body)
	if err != nil {
		return s.writeError(c, id, err)
	}
	s.log.Info("patched container",
		"request_id", id,
		"file_type", res.FileType,
		"bytes", len(res.Data),
	)

	h := c.Response().Header()
	h.Set(HeaderFileType, res.FileType)
	h.Set(HeaderTitle, url.QueryEscape(res.Title))
	h.Set(HeaderDelta, strconv.Itoa(res.Delta))
	return c.Blob(http.StatusOK, mimeOctetStream, res.Data)
}

func (s *Server) handleInspect(c *echo.Context) error {
	id := requestID(c)
	body, err := s.readBody(c)
	if err != nil {
		return s.writeError(c, id, err)
	}

	ct, err := melon.Parse(body)
	if err != nil {
		return s.writeError(c, id, err)
	}
	withMeta, _ := strconv.ParseBool(c.QueryParam("metadata"))
	return writeJSON(c, http.StatusOK, ct.Info(withMeta))
}

func (s *Server) readBody(c *echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, s.maxBodyBytes)
	}
	return body, nil
}

func (s *Server) writeError(c *echo.Context, id string, err error) error {
	status, typ := http.StatusInternalServerError, "server_error"
	switch {
	case melon.IsFormatError(err):
		status, typ = http.StatusUnprocessableEntity, "format_error"
	case errors.Is(err, errBodyTooLarge):
		status, typ = http.StatusRequestEntityTooLarge, "invalid_request_error"
	}
	s.log.Warn("request failed", "request_id", id, "status", status, "error", err)
	return writeJSON(c, status, ErrorBody{Error: ResponseError{
		Message:   err.Error(),
		Type:      typ,
		RequestID: id,
	}})
}

// requestID echoes the caller's request ID or assigns a new one.
func requestID(c *echo.Context) string {
	id := c.Request().Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Response().Header().Set(HeaderRequestID, id)
	return id
}

func writeJSON(c *echo.Context, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, buf.Bytes())
}
