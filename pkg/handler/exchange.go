// Package handler defines what SSR variables and API endpoints see of a request.
//
// Handlers receive a single *Exchange carrying the ambient request state
// (method, path, query, headers, body, uploads) and the response status and
// headers they may set. Handlers are looked up by name through a Source:
// compiled-in registrations live in a Table, interpreted handler files are
// provided by the script loader.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// DefaultContentType is used when a handler does not choose one
const DefaultContentType = "text/html; charset=utf-8"

// maxMultipartMemory bounds in-memory multipart parsing; larger uploads spill to disk
const maxMultipartMemory = 32 << 20

// Exchange is the per-request state shared by the router and handlers.
// It is not safe for concurrent use.
type Exchange struct {
	req   *http.Request
	path  string
	query url.Values

	status int
	header http.Header

	body     []byte
	bodyRead bool
}

// NewExchange wraps r. The query is copied so that rewrite merges never
// touch the original request.
func NewExchange(r *http.Request) *Exchange {
	return &Exchange{
		req:    r,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		header: make(http.Header),
	}
}

// Context returns the request context
func (x *Exchange) Context() context.Context {
	return x.req.Context()
}

// SetContext replaces the request context, e.g. with one carrying a trace span
func (x *Exchange) SetContext(ctx context.Context) {
	x.req = x.req.WithContext(ctx)
}

// Request returns the underlying HTTP request
func (x *Exchange) Request() *http.Request {
	return x.req
}

// Method returns the request method exactly as received
func (x *Exchange) Method() string {
	return x.req.Method
}

// Path returns the decoded request path without the query
func (x *Exchange) Path() string {
	return x.path
}

// Query returns the current query parameters, including any merged by rewrites
func (x *Exchange) Query() url.Values {
	return x.query
}

// Param returns the first value of a query parameter
func (x *Exchange) Param(key string) string {
	return x.query.Get(key)
}

// MergeQuery merges values into the query. Keys present in values replace
// the existing value list entirely.
func (x *Exchange) MergeQuery(values url.Values) {
	for k, vs := range values {
		x.query[k] = append([]string(nil), vs...)
	}
}

// RequestHeader returns a request header value
func (x *Exchange) RequestHeader(key string) string {
	return x.req.Header.Get(key)
}

// Body reads the raw request body once and caches it
func (x *Exchange) Body() ([]byte, error) {
	if x.bodyRead {
		return x.body, nil
	}
	x.bodyRead = true
	if x.req.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(x.req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	x.body = data
	return data, nil
}

// DecodeJSON decodes the request body into v
func (x *Exchange) DecodeJSON(v any) error {
	data, err := x.Body()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// FormValue returns a form field from a urlencoded or multipart body
func (x *Exchange) FormValue(key string) string {
	return x.req.PostFormValue(key)
}

// FormFile returns an uploaded file from a multipart body
func (x *Exchange) FormFile(key string) (multipart.File, *multipart.FileHeader, error) {
	if x.req.MultipartForm == nil {
		if err := x.req.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}
	return x.req.FormFile(key)
}

// SetStatus sets the response status code
func (x *Exchange) SetStatus(code int) {
	x.status = code
}

// Status returns the response status, 200 unless something set it
func (x *Exchange) Status() int {
	if x.status == 0 {
		return http.StatusOK
	}
	return x.status
}

// StatusSet reports whether a handler or the router chose a status
func (x *Exchange) StatusSet() bool {
	return x.status != 0
}

// Header returns the response headers
func (x *Exchange) Header() http.Header {
	return x.header
}

// SetHeader sets a response header
func (x *Exchange) SetHeader(key, value string) {
	x.header.Set(key, value)
}

// SetContentType sets the response content type
func (x *Exchange) SetContentType(contentType string) {
	x.header.Set("Content-Type", contentType)
}

// ContentType returns the response content type, or DefaultContentType
func (x *Exchange) ContentType() string {
	if ct := x.header.Get("Content-Type"); ct != "" {
		return ct
	}
	return DefaultContentType
}

// JSON sets the JSON content type and returns the encoding of v
func (x *Exchange) JSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON response: %w", err)
	}
	x.SetContentType("application/json")
	return string(data), nil
}

// Base64JSON returns the base64 encoding of the JSON encoding of v.
// Pages use it to embed data without HTML escaping issues; the client
// decodes the string before parsing it.
func Base64JSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
