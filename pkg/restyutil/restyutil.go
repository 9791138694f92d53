// Package restyutil traces resty clients and dumps their http exchanges to
// disk for debugging.
package restyutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// Output receives one formatted exchange per response.
type Output interface {
	Write(id string, contents string) error
}

// FilesystemOutput writes every exchange to its own file in a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates dir if needed, existing dumps are kept.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) error {
	return os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
}

// Trace starts a client span for every request made by client, tracer can
// be nil in which case the global "resty" tracer is used.
func Trace(client *resty.Client, tracer trace.Tracer) {
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method), trace.WithSpanKind(trace.SpanKindClient))
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		// RawRequest is only populated once the request was sent
		if res.Request.RawRequest != nil {
			span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
		}
		if res.RawResponse != nil {
			span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
		}
		if res.IsError() {
			span.SetStatus(codes.Error, res.Status())
		}
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if req.RawRequest != nil {
			span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
		}
	})
}

type dumpIDKey struct{}

// Dump writes every completed exchange of client to output, onFail is
// called when output rejects a write.
func Dump(client *resty.Client, output Output, onFail func(id string, err error)) {
	var counter atomic.Uint64

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		id := fmt.Sprintf("%06d", counter.Add(1))
		req.SetContext(context.WithValue(req.Context(), dumpIDKey{}, id))
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id, ok := res.Request.Context().Value(dumpIDKey{}).(string)
		if !ok || res.Request.RawRequest == nil {
			return nil
		}
		err := output.Write(id, formatExchange(res))
		if err != nil && onFail != nil {
			onFail(id, err)
		}
		return nil
	})
}
