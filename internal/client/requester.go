package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	internalhttp "github.com/fivetwenty-io/circleci-client/internal/http"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// Requester dispatches requests for the resource clients, running the
// interceptor chain around the HTTP layer. Cache interceptors can satisfy a
// GET without a network call, and response interceptors can rewrite what the
// caller sees, so the chain's view of the response is authoritative.
type Requester struct {
	http  *internalhttp.Client
	chain *circleci.InterceptorChain
}

// NewRequester creates a requester. A nil chain dispatches directly.
func NewRequester(httpClient *internalhttp.Client, chain *circleci.InterceptorChain) *Requester {
	return &Requester{
		http:  httpClient,
		chain: chain,
	}
}

// Do dispatches a request through the interceptor chain.
func (r *Requester) Do(ctx context.Context, req *internalhttp.Request) (*internalhttp.Response, error) {
	if r.chain == nil {
		return r.http.Do(ctx, req)
	}

	version := req.Version
	if version == "" {
		version = circleci.APIVersionV1
	}

	var payload []byte

	if req.Body != nil {
		var err error

		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	intReq := &circleci.Request{
		Method:   req.Method,
		Version:  version,
		Path:     req.Path,
		Query:    req.Query,
		Headers:  make(http.Header, len(req.Headers)),
		Body:     payload,
		Metadata: make(map[string]interface{}),
	}
	for key, value := range req.Headers {
		intReq.Headers.Set(key, value)
	}

	err := r.chain.ExecuteRequestInterceptors(ctx, intReq)
	if err != nil {
		return nil, err
	}

	// A cache hit satisfies the request without dispatching.
	if body, ok := circleci.CachedResponse(intReq); ok {
		println("DEBUG requester: served from cache", intReq.Path)
		return &internalhttp.Response{StatusCode: http.StatusOK, Body: body}, nil
	}
	println("DEBUG requester: dispatching", intReq.Path)

	dispatched := &internalhttp.Request{
		Method:  intReq.Method,
		Version: intReq.Version,
		Path:    intReq.Path,
		Query:   intReq.Query,
		Headers: flattenHeaders(intReq.Headers),
	}
	if payload != nil {
		dispatched.Body = json.RawMessage(payload)
	}

	resp, err := r.http.Do(ctx, dispatched)

	intResp := &circleci.Response{Error: err}
	if resp != nil {
		intResp.StatusCode = resp.StatusCode
		intResp.Headers = resp.Headers
		intResp.Body = resp.Body
	}

	chainErr := r.chain.ExecuteResponseInterceptors(ctx, intReq, intResp)
	if chainErr != nil {
		return resp, chainErr
	}

	if resp == nil && intResp.StatusCode == 0 {
		return nil, intResp.Error
	}

	result := &internalhttp.Response{
		StatusCode: intResp.StatusCode,
		Headers:    intResp.Headers,
		Body:       intResp.Body,
	}

	return result, intResp.Error
}

// Get issues a GET request against the given API version.
func (r *Requester) Get(ctx context.Context, version circleci.APIVersion, path string, query url.Values) (*internalhttp.Response, error) {
	return r.Do(ctx, &internalhttp.Request{Method: http.MethodGet, Version: version, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (r *Requester) Post(ctx context.Context, version circleci.APIVersion, path string, body interface{}) (*internalhttp.Response, error) {
	return r.Do(ctx, &internalhttp.Request{Method: http.MethodPost, Version: version, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (r *Requester) Put(ctx context.Context, version circleci.APIVersion, path string, body interface{}) (*internalhttp.Response, error) {
	return r.Do(ctx, &internalhttp.Request{Method: http.MethodPut, Version: version, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (r *Requester) Patch(ctx context.Context, version circleci.APIVersion, path string, body interface{}) (*internalhttp.Response, error) {
	return r.Do(ctx, &internalhttp.Request{Method: http.MethodPatch, Version: version, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (r *Requester) Delete(ctx context.Context, version circleci.APIVersion, path string) (*internalhttp.Response, error) {
	return r.Do(ctx, &internalhttp.Request{Method: http.MethodDelete, Version: version, Path: path})
}

// Stream issues a GET against an absolute URL, bypassing the chain.
func (r *Requester) Stream(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return r.http.Stream(ctx, rawURL)
}

// flattenHeaders converts interceptor headers back to the request map,
// keeping the first value per key.
func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return nil
	}

	flat := make(map[string]string, len(headers))
	for key := range headers {
		flat[key] = headers.Get(key)
	}

	return flat
}
