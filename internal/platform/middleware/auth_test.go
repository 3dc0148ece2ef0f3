package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"panchayat/pkg/requestcontext"
)

type stubValidator struct {
	claims *TokenClaims
	err    error
}

func (v *stubValidator) ValidateToken(string) (*TokenClaims, error) {
	return v.claims, v.err
}

type stubDeactivation struct {
	deactivated bool
	err         error
}

func (d *stubDeactivation) IsDeactivated(context.Context, string) (bool, error) {
	return d.deactivated, d.err
}

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.DiscardHandler)
}

func (s *AuthMiddlewareSuite) serve(mw func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw(next).ServeHTTP(rec, req)
	return rec
}

func (s *AuthMiddlewareSuite) TestRequireAuth() {
	claims := &TokenClaims{UserID: "u1", Email: "a@b.c", Role: "citizen"}

	s.Run("missing header is 401", func() {
		mw := RequireAuth(&stubValidator{claims: claims}, nil, s.logger)
		rec := s.serve(mw, httptest.NewRequest(http.MethodGet, "/", nil))
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.JSONEq(`{"detail":"Access token required"}`, rec.Body.String())
	})

	s.Run("malformed header is 401", func() {
		mw := RequireAuth(&stubValidator{claims: claims}, nil, s.logger)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := s.serve(mw, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("invalid token is 401", func() {
		mw := RequireAuth(&stubValidator{err: errors.New("expired")}, nil, s.logger)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := s.serve(mw, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.JSONEq(`{"detail":"Invalid or expired token"}`, rec.Body.String())
	})

	s.Run("deactivated user is 401", func() {
		mw := RequireAuth(&stubValidator{claims: claims}, &stubDeactivation{deactivated: true}, s.logger)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := s.serve(mw, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.JSONEq(`{"detail":"Account is inactive"}`, rec.Body.String())
	})

	s.Run("deactivation check failure is 500", func() {
		mw := RequireAuth(&stubValidator{claims: claims}, &stubDeactivation{err: errors.New("redis down")}, s.logger)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := s.serve(mw, req)
		s.Equal(http.StatusInternalServerError, rec.Code)
	})

	s.Run("valid token threads identity into context", func() {
		var gotID, gotRole string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = requestcontext.UserID(r.Context())
			gotRole = requestcontext.UserRole(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		RequireAuth(&stubValidator{claims: claims}, &stubDeactivation{}, s.logger)(next).ServeHTTP(rec, req)

		s.Equal("u1", gotID)
		s.Equal("citizen", gotRole)
	})
}

func (s *AuthMiddlewareSuite) TestRequireRole() {
	withRole := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			req = req.WithContext(requestcontext.WithUserRole(req.Context(), role))
		}
		return req
	}

	s.Run("unauthenticated is 401", func() {
		rec := s.serve(RequireRole("admin"), withRole(""))
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.JSONEq(`{"detail":"Not authenticated"}`, rec.Body.String())
	})

	s.Run("wrong role is 403 naming the requirement", func() {
		rec := s.serve(RequireRole("admin", "clerk"), withRole("citizen"))
		s.Equal(http.StatusForbidden, rec.Code)
		s.JSONEq(`{"detail":"Access denied. Required role: admin or clerk"}`, rec.Body.String())
	})

	s.Run("allowed role passes through", func() {
		rec := s.serve(RequireRole("admin", "clerk"), withRole("clerk"))
		s.Equal(http.StatusOK, rec.Code)
	})
}
