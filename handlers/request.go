package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kova98/redditscope.api/data"
)

type contextKey string

const UserContextKey contextKey = "user"

// WithUser stores the authenticated caller on ctx.
func WithUser(ctx context.Context, user data.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the authenticated caller, if any. Private routes run
// without a user when authentication is disabled.
func UserFromContext(ctx context.Context) (data.User, bool) {
	user, ok := ctx.Value(UserContextKey).(data.User)
	return user, ok
}

var errEmptyBody = errors.New("empty request body")

// decodeJSON decodes a single JSON object into dest, rejecting unknown fields.
func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}
