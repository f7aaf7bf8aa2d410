package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"phrasebook/internal/api"
	"phrasebook/internal/auth"
	"phrasebook/internal/logging"
	"phrasebook/internal/services"
)

const (
	sessionCookie   = "phrasebook_session"
	requestIDHeader = "X-Request-ID"
	userKey         = "user"
)

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger := logging.WithContext(c.Request.Context(), s.logger)
		attrs := []logging.Attr{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, logging.String("error", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", logging.Args(attrs...)...)
			return
		}
		logger.Debug("http request", logging.Args(attrs...)...)
	}
}

// authenticate reads the bearer token or session cookie.
func (s *Server) authenticate(c *gin.Context) (auth.Claims, bool) {
	token := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if cookie, err := c.Cookie(sessionCookie); err == nil {
		token = cookie
	}
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return auth.Claims{}, false
	}
	if _, known := s.users[claims.User]; !known {
		return auth.Claims{}, false
	}
	return claims, true
}

func (s *Server) attachUser(c *gin.Context, user string) {
	c.Set(userKey, user)
	c.Request = c.Request.WithContext(services.WithUser(c.Request.Context(), user))
}

func (s *Server) requirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := s.authenticate(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		s.attachUser(c, claims.User)
		c.Next()
	}
}

func (s *Server) requireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := s.authenticate(c)
		if !ok {
			s.writeError(c, services.Wrap(services.ErrUnauthorized, "web", "auth", "login required", nil))
			c.Abort()
			return
		}
		s.attachUser(c, claims.User)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userKey)
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	rid, _ := services.RequestIDFromContext(c.Request.Context())
	c.JSON(status, api.ErrorResponse{Error: api.ErrorMessage(err), RequestID: rid})
}
