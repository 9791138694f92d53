package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

type restyRequestKey struct{}

type restyRequest struct {
	id uint64
	// start does not need an injectable clock, only the elapsed duration is
	// reported.
	start time.Time
}

// InstrumentResty reports every request, response and transport error of the
// client through the given API.
func InstrumentResty(client *resty.Client, tel API) {
	var counter atomic.Uint64

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		id := counter.Add(1)
		req.SetContext(context.WithValue(req.Context(), restyRequestKey{}, restyRequest{
			id:    id,
			start: time.Now(),
		}))
		tel.ReportDebug(report_resty_request, id, req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		info, ok := res.Request.Context().Value(restyRequestKey{}).(restyRequest)
		if !ok {
			return nil
		}
		tel.ReportDebug(
			report_resty_response,
			info.id,
			time.Since(info.start).String(),
			res.Status(),
		)
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		var elapsed time.Duration
		info, ok := req.Context().Value(restyRequestKey{}).(restyRequest)
		if ok {
			elapsed = time.Since(info.start)
		}
		tel.ReportBroken(report_resty_response, err, req.Method, req.URL, elapsed)
	})
}
