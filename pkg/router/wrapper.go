package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/mitchellh/mapstructure"
)

type (
	responseKey struct{}
	errorKey    struct{}
)

// Response returns the response object of the handler. It is only available in
// After middlewares and closers.
func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

// Error returns the error of the request. It is only available in closers.
func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := xcontext.WithHTTPRequest(router.ctx, r)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		var err error
		defer func() {
			ctx = context.WithValue(ctx, errorKey{}, err)
			for _, c := range router.closers {
				c(ctx)
			}
			writeResponse(ctx, w)
		}()

		for _, m := range router.befores {
			if ctx, err = applyMiddleware(ctx, m); err != nil {
				return
			}
		}

		var req Request
		if err = parseRequest(ctx, method, r, &req); err != nil {
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			return
		}

		ctx = context.WithValue(ctx, responseKey{}, resp)
		for _, m := range router.afters {
			if ctx, err = applyMiddleware(ctx, m); err != nil {
				return
			}
		}
	}
}

func applyMiddleware(ctx context.Context, m MiddlewareFunc) (context.Context, error) {
	newCtx, err := m(ctx)
	if err != nil {
		return ctx, err
	}

	if newCtx == nil {
		return ctx, nil
	}

	return newCtx, nil
}

func parseRequest(ctx context.Context, method string, r *http.Request, req any) error {
	switch method {
	case http.MethodGet:
		params := map[string]any{}
		for k, v := range r.URL.Query() {
			if len(v) == 1 {
				params[k] = v[0]
			} else {
				params[k] = v
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           req,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create query decoder: %v", err)
			return errorx.Unknown
		}

		if err := decoder.Decode(params); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot decode query: %v", err)
			return errorx.New(errorx.BadRequest, "Invalid query")
		}

	case http.MethodPost:
		// Multipart forms are read by the handler itself.
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			return nil
		}

		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			xcontext.Logger(ctx).Debugf("Cannot decode body: %v", err)
			return errorx.New(errorx.BadRequest, "Invalid body")
		}

	default:
		return errorx.New(errorx.BadRequest, "Unsupported method %s", method)
	}

	return nil
}
