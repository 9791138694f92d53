// Package service exposes the review pipeline and the analysis history as
// the reviewscope.v1.ReviewService connect service.
package service

import (
	"context"
	"errors"
	"net/http"

	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/pipeline"
	"reviewscope-backend/internal/store"

	"connectrpc.com/connect"
)

const (
	report_process        = "process"
	report_list_analyses  = "list-analyses"
	report_get_analysis   = "get-analysis"
	report_delete         = "delete-analysis"
	report_list_reviews   = "list-reviews"
	report_process_faults = "process.faults"
)

// DefaultPerPage is used when a ListAnalyses request leaves per_page unset.
const DefaultPerPage = 10

// Processor runs a review processing job, it is implemented by
// pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, url string) (pipeline.Result, error)
}

// Service implements reviewscope.v1.ReviewService
type Service struct {
	processor Processor
	store     store.Store
	tel       telemetry.API
}

type serviceConfig struct {
	tel telemetry.API
}

type Option func(cfg *serviceConfig)

func WithTelemetry(tel telemetry.API) Option {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

func NewService(processor Processor, store store.Store, options ...Option) Service {
	assert.NotNil(processor)

	cfg := serviceConfig{tel: telemetry.SlogAPI{}}
	for _, opt := range options {
		opt(&cfg)
	}

	return Service{
		processor: processor,
		store:     store,
		tel:       telemetry.NewScopedAPI("service", cfg.tel),
	}
}

// FaultHeader is the error metadata key carrying the fault kind name.
const FaultHeader = "Reviewscope-Fault"

// connectCode maps a fault onto the closest connect code.
func connectCode(err error) connect.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	}
	switch fault.KindOf(err) {
	case fault.InvalidInput:
		return connect.CodeInvalidArgument
	case fault.NotFound:
		return connect.CodeNotFound
	case fault.SessionInitFailed, fault.LoadFailed:
		return connect.CodeUnavailable
	case fault.LoadTimeout:
		return connect.CodeDeadlineExceeded
	case fault.PersistenceError, fault.ClassificationError, fault.ElementStale:
		return connect.CodeInternal
	}
	return connect.CodeUnknown
}

// toConnectError reports unexpected failures and wraps err in a
// *connect.Error carrying the mapped code.
func (s Service) toConnectError(id string, err error) error {
	code := connectCode(err)
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeCanceled:
		s.tel.ReportDebug("request rejected", id, err)
	default:
		s.tel.ReportBroken(id, err)
	}
	connectErr := connect.NewError(code, err)
	connectErr.Meta().Set(FaultHeader, fault.KindOf(err).String())
	return connectErr
}

// Process implements the connect method.
func (s Service) Process(ctx context.Context, req *connect.Request[ProcessRequest]) (*connect.Response[ProcessResponse], error) {
	result, err := s.processor.Process(ctx, req.Msg.URL)
	if err != nil {
		s.tel.ReportCount(report_process_faults, 1)
		return nil, s.toConnectError(report_process, err)
	}
	if result.NoReviews {
		return connect.NewResponse(&ProcessResponse{
			NoReviews: true,
			Message:   result.Message,
		}), nil
	}
	return connect.NewResponse(&ProcessResponse{Result: resultMessage(result)}), nil
}

// ListAnalyses implements the connect method.
func (s Service) ListAnalyses(ctx context.Context, req *connect.Request[ListAnalysesRequest]) (*connect.Response[ListAnalysesResponse], error) {
	page := req.Msg.Page
	if page < 1 {
		page = 1
	}
	perPage := req.Msg.PerPage
	if perPage == 0 {
		perPage = DefaultPerPage
	}

	records, err := s.store.GetAnalyses(ctx, page, perPage)
	if err != nil {
		return nil, s.toConnectError(report_list_analyses, err)
	}
	totalPages, err := s.store.GetTotalPages(ctx, perPage)
	if err != nil {
		return nil, s.toConnectError(report_list_analyses, err)
	}

	analyses := make([]Analysis, len(records))
	for i, r := range records {
		analyses[i] = analysisMessage(r, req.Msg.IncludeReviews)
	}
	return connect.NewResponse(&ListAnalysesResponse{
		Analyses:   analyses,
		Page:       page,
		TotalPages: totalPages,
	}), nil
}

// GetAnalysis implements the connect method.
func (s Service) GetAnalysis(ctx context.Context, req *connect.Request[GetAnalysisRequest]) (*connect.Response[GetAnalysisResponse], error) {
	record, err := s.store.GetAnalysis(ctx, req.Msg.ID)
	if err != nil {
		return nil, s.toConnectError(report_get_analysis, err)
	}
	return connect.NewResponse(&GetAnalysisResponse{
		Analysis: analysisMessage(record, true),
	}), nil
}

// DeleteAnalysis implements the connect method.
func (s Service) DeleteAnalysis(ctx context.Context, req *connect.Request[DeleteAnalysisRequest]) (*connect.Response[DeleteAnalysisResponse], error) {
	err := s.store.DeleteAnalysis(ctx, req.Msg.ID)
	if err != nil {
		return nil, s.toConnectError(report_delete, err)
	}
	return connect.NewResponse(&DeleteAnalysisResponse{}), nil
}

// ListReviews implements the connect method.
func (s Service) ListReviews(ctx context.Context, req *connect.Request[ListReviewsRequest]) (*connect.Response[ListReviewsResponse], error) {
	target, err := pipeline.ValidateURL(req.Msg.URL)
	if err != nil {
		return nil, s.toConnectError(report_list_reviews, err)
	}
	product, err := s.store.GetProduct(ctx, target.String())
	if err != nil {
		return nil, s.toConnectError(report_list_reviews, err)
	}
	rows, err := s.store.GetReviews(ctx, product.ID)
	if err != nil {
		return nil, s.toConnectError(report_list_reviews, err)
	}

	reviews := make([]Review, len(rows))
	for i, r := range rows {
		reviews[i] = Review{
			ID:        r.ID,
			Text:      r.Text,
			Rating:    r.Rating,
			Timestamp: r.Timestamp,
		}
	}
	return connect.NewResponse(&ListReviewsResponse{
		ProductID:     product.ID,
		LastScrapedAt: product.LastScrapedAt,
		Reviews:       reviews,
	}), nil
}

const ServiceName = "reviewscope.v1.ReviewService"

const (
	ProcessProcedure        = "/" + ServiceName + "/Process"
	ListAnalysesProcedure   = "/" + ServiceName + "/ListAnalyses"
	GetAnalysisProcedure    = "/" + ServiceName + "/GetAnalysis"
	DeleteAnalysisProcedure = "/" + ServiceName + "/DeleteAnalysis"
	ListReviewsProcedure    = "/" + ServiceName + "/ListReviews"
)

// NewHandler mounts every procedure of the service, the returned path is
// the prefix to register the handler under.
func NewHandler(s Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ProcessProcedure, connect.NewUnaryHandler(ProcessProcedure, s.Process, opts...))
	mux.Handle(ListAnalysesProcedure, connect.NewUnaryHandler(ListAnalysesProcedure, s.ListAnalyses, opts...))
	mux.Handle(GetAnalysisProcedure, connect.NewUnaryHandler(GetAnalysisProcedure, s.GetAnalysis, opts...))
	mux.Handle(DeleteAnalysisProcedure, connect.NewUnaryHandler(DeleteAnalysisProcedure, s.DeleteAnalysis, opts...))
	mux.Handle(ListReviewsProcedure, connect.NewUnaryHandler(ListReviewsProcedure, s.ListReviews, opts...))
	return "/" + ServiceName + "/", mux
}
