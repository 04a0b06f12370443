package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"garagetracker/internal/gateway"
)

type contextKey struct{}

// Authenticator checks HTTP basic credentials against the single tracker
// account and puts the resulting gateway.Session in the request context.
type Authenticator struct {
	user     string
	password string
}

func NewAuthenticator(user, password string) *Authenticator {
	return &Authenticator{user: user, password: password}
}

// Middleware rejects requests without valid credentials by calling onFail.
// A nil onFail answers 401 with a WWW-Authenticate challenge.
func (a *Authenticator) Middleware(onFail func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onFail == nil {
		onFail = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !a.valid(user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="tracker", charset="UTF-8"`)
				onFail(w, r)
				return
			}
			ctx := WithSession(r.Context(), gateway.Session{UserID: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authenticator) valid(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(a.password)) == 1
	return userOK && passOK && a.password != ""
}

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess gateway.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// SessionFrom returns the session stored by the middleware, or the empty
// session, which every gateway call rejects.
func SessionFrom(ctx context.Context) gateway.Session {
	sess, _ := ctx.Value(contextKey{}).(gateway.Session)
	return sess
}
