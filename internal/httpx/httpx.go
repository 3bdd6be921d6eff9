// Package httpx holds the JSON and error helpers shared by feature handlers.
// It is the only place an apperr.Kind becomes an HTTP status.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// MessageBody is returned by endpoints that only acknowledge.
type MessageBody struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes {"detail": ...}. Internal errors are logged and their
// cause is not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	} else {
		logger.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, status, ErrorBody{Detail: apperr.Message(err)})
}

// DecodeJSON reads a JSON body into dst. Unknown fields are ignored so the
// fixed frontend can send extra keys.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("request body is empty")
		}
		return apperr.Wrap(apperr.InvalidArgument, err, "invalid JSON body")
	}
	return nil
}

type ctxKey int

const (
	adminKey ctxKey = iota
	requestIDKey
)

// WithAdmin stores the authenticated admin in ctx.
func WithAdmin(ctx context.Context, a *entity.Admin) context.Context {
	return context.WithValue(ctx, adminKey, a)
}

// AdminFrom returns the admin stored by the auth middleware, if any.
func AdminFrom(ctx context.Context) (*entity.Admin, bool) {
	a, ok := ctx.Value(adminKey).(*entity.Admin)
	return a, ok && a != nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
