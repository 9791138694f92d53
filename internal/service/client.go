package service

import (
	"context"
	"errors"
	"strings"

	"reviewscope-backend/internal/components/fault"

	"connectrpc.com/connect"
)

// ReviewServiceClient is a client for reviewscope.v1.ReviewService
type ReviewServiceClient struct {
	process        *connect.Client[ProcessRequest, ProcessResponse]
	listAnalyses   *connect.Client[ListAnalysesRequest, ListAnalysesResponse]
	getAnalysis    *connect.Client[GetAnalysisRequest, GetAnalysisResponse]
	deleteAnalysis *connect.Client[DeleteAnalysisRequest, DeleteAnalysisResponse]
	listReviews    *connect.Client[ListReviewsRequest, ListReviewsResponse]
}

// NewReviewServiceClient creates a client for the service listening at
// baseURL (ex. http://localhost:8000).
func NewReviewServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReviewServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(faultInterceptor()),
	}, opts...)
	return ReviewServiceClient{
		process: connect.NewClient[ProcessRequest, ProcessResponse](
			httpClient, baseURL+ProcessProcedure, opts...,
		),
		listAnalyses: connect.NewClient[ListAnalysesRequest, ListAnalysesResponse](
			httpClient, baseURL+ListAnalysesProcedure, opts...,
		),
		getAnalysis: connect.NewClient[GetAnalysisRequest, GetAnalysisResponse](
			httpClient, baseURL+GetAnalysisProcedure, opts...,
		),
		deleteAnalysis: connect.NewClient[DeleteAnalysisRequest, DeleteAnalysisResponse](
			httpClient, baseURL+DeleteAnalysisProcedure, opts...,
		),
		listReviews: connect.NewClient[ListReviewsRequest, ListReviewsResponse](
			httpClient, baseURL+ListReviewsProcedure, opts...,
		),
	}
}

// faultInterceptor turns error responses carrying FaultHeader back into
// faults of the same kind, the *connect.Error stays in the chain.
func faultInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			res, err := next(ctx, req)
			if err != nil {
				return nil, rebuildFault(req.Spec().Procedure, err)
			}
			return res, nil
		}
	}
}

func rebuildFault(procedure string, err error) error {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return err
	}
	kind, ok := fault.ParseKind(connectErr.Meta().Get(FaultHeader))
	if !ok || kind == fault.Unknown {
		return err
	}
	return fault.New(kind, procedure, err)
}

func (c ReviewServiceClient) Process(ctx context.Context, req *connect.Request[ProcessRequest]) (*connect.Response[ProcessResponse], error) {
	return c.process.CallUnary(ctx, req)
}

func (c ReviewServiceClient) ListAnalyses(ctx context.Context, req *connect.Request[ListAnalysesRequest]) (*connect.Response[ListAnalysesResponse], error) {
	return c.listAnalyses.CallUnary(ctx, req)
}

func (c ReviewServiceClient) GetAnalysis(ctx context.Context, req *connect.Request[GetAnalysisRequest]) (*connect.Response[GetAnalysisResponse], error) {
	return c.getAnalysis.CallUnary(ctx, req)
}

func (c ReviewServiceClient) DeleteAnalysis(ctx context.Context, req *connect.Request[DeleteAnalysisRequest]) (*connect.Response[DeleteAnalysisResponse], error) {
	return c.deleteAnalysis.CallUnary(ctx, req)
}

func (c ReviewServiceClient) ListReviews(ctx context.Context, req *connect.Request[ListReviewsRequest]) (*connect.Response[ListReviewsResponse], error) {
	return c.listReviews.CallUnary(ctx, req)
}
