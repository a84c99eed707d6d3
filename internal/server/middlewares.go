package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"consumerwise/internal/auth"
	"consumerwise/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type sessionContextKey struct{}
type sessionContext struct {
	session auth.Session
	account auth.Account
}

type traceContextKey struct{}
type traceContext struct {
	traceID string
}

func setSessionContext(ctx context.Context, sc sessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sc)
}
func getSessionContext(ctx context.Context) (sessionContext, error) {
	sc, ok := ctx.Value(sessionContextKey{}).(sessionContext)
	if !ok {
		return sc, errors.New("failed to get sessionContext")
	}
	return sc, nil
}

func setTraceContext(ctx context.Context, tc traceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}
func getTraceContext(ctx context.Context) traceContext {
	tc, _ := ctx.Value(traceContextKey{}).(traceContext)
	return tc
}

func (s Server) maxBytesMw(next http.Handler) http.Handler {
	return http.MaxBytesHandler(next, 30000)
}

// uploadMaxBytesMw bounds multipart image uploads, which need far more room
// than the JSON routes get.
func (s Server) uploadMaxBytesMw(next http.Handler) http.Handler {
	return http.MaxBytesHandler(next, 10<<20)
}

func (s Server) loggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := uuid.NewString()
		s.Logger.Debugf("loggingMw: New incoming request %s %s from %s, UA: %s, Host: %#v, TraceID: %s",
			r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent(), r.Host, traceID)

		defer func() {
			if re := recover(); re != nil {
				s.Logger.Errorf("loggingMw: Handler crashed, err: %v, TraceID: %s, stack trace:\n%s", re, traceID, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		tc := traceContext{traceID: traceID}
		next.ServeHTTP(w, r.WithContext(setTraceContext(r.Context(), tc)))

		s.Logger.Tracef("loggingMw: Incoming request %s %s took %dms, TraceID: %s",
			r.Method, r.URL.Path, time.Since(start).Milliseconds(), traceID)
	})
}

// authMw validates the session token from the Authorization header or the
// session cookie, checks it against the stored token hashes on the profile,
// and puts the resolved account on the request context. Requests from a
// browser are redirected to the sign-in page instead of getting a bare 401.
func (s Server) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		raw := tokenFromRequest(r)
		if raw == "" {
			s.Logger.Debugf("authMw: No session token on request, TraceID: %s", tid)
			s.denyUnauthenticated(w, r)
			return
		}

		session, err := s.Issuer.Parse(raw)
		if err != nil {
			s.Logger.Debugf("authMw: Failed to validate session token, err: %v, TraceID: %s", err, tid)
			s.denyUnauthenticated(w, r)
			return
		}

		var account auth.Account
		var loginTokens []model.LoginToken
		switch session.Role {
		case model.RoleAdmin:
			a, err := s.DB.AdminFindByID(r.Context(), session.SubjectID)
			if err != nil {
				s.Logger.Debugf("authMw: Error finding Admin from session token, err: %v, TraceID: %s", err, tid)
				s.denyUnauthenticated(w, r)
				return
			}
			account = auth.Account{Role: model.RoleAdmin, Admin: &a}
			loginTokens = a.LoginTokens
		case model.RoleRetailer:
			rt, err := s.DB.RetailerFindByID(r.Context(), session.SubjectID)
			if err != nil {
				s.Logger.Debugf("authMw: Error finding Retailer from session token, err: %v, TraceID: %s", err, tid)
				s.denyUnauthenticated(w, r)
				return
			}
			account = auth.Account{Role: model.RoleRetailer, Retailer: &rt}
			loginTokens = rt.LoginTokens
		default:
			s.Logger.Errorf("authMw: Valid token contains unknown role: %#v, TraceID: %s", session.Role, tid)
			s.denyUnauthenticated(w, r)
			return
		}

		for _, lt := range loginTokens {
			if lt.TokenID != session.TokenID {
				continue
			}
			if err = auth.CompareTokenHash(lt.Token, raw); err != nil {
				s.Logger.Debugf("authMw: Error comparing session token hashes for subject: %s, token ID: %s, err: %v, TraceID: %s",
					session.SubjectID, session.TokenID, err, tid)
				break
			}

			s.Logger.Debugf("authMw: Subject: %s, Role: %s, TraceID: %s", session.SubjectID, session.Role, tid)
			sc := sessionContext{session: session, account: account}
			next.ServeHTTP(w, r.WithContext(setSessionContext(r.Context(), sc)))
			return
		}
		s.denyUnauthenticated(w, r)
	})
}

func (s Server) adminOnly(next http.Handler) http.Handler {
	return s.requireRole(model.RoleAdmin, next)
}

func (s Server) retailerOnly(next http.Handler) http.Handler {
	return s.requireRole(model.RoleRetailer, next)
}

func (s Server) requireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("requireRole: Error getting sessionContext, err: %v, TraceID: %s",
				err, getTraceContext(r.Context()).traceID)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if sc.session.Role != role {
			s.Logger.Debugf("requireRole: Subject %s with role %s denied access to %s area, TraceID: %s",
				sc.session.SubjectID, sc.session.Role, role, getTraceContext(r.Context()).traceID)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}

// denyUnauthenticated sends browsers to the sign-in page and gives API
// clients a plain 401 without hinting at why the token failed.
func (s Server) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
