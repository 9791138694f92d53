package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"connectrpc.com/connect"
)

var errUnauthorized = errors.New("unauthorized")

type tokenVerifier = func(ctx context.Context, header string) (context.Context, error)

// authInterceptor runs a verifier against the Authorization header of
// every unary and streaming call.
type authInterceptor struct {
	verify tokenVerifier
}

func (a authInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		ctx, err := a.verify(ctx, req.Header().Get("Authorization"))
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (a authInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (a authInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := a.verify(ctx, conn.RequestHeader().Get("Authorization"))
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// NewBearerTokenInterceptor rejects calls that do not carry
// "Authorization: Bearer <token>". An empty token disables the check.
func NewBearerTokenInterceptor(token string) connect.Interceptor {
	return authInterceptor{
		verify: func(ctx context.Context, header string) (context.Context, error) {
			if token == "" {
				return ctx, nil
			}
			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") ||
				subtle.ConstantTimeCompare([]byte(value), []byte(token)) != 1 {
				return ctx, connect.NewError(connect.CodeUnauthenticated, errUnauthorized)
			}
			return ctx, nil
		},
	}
}
