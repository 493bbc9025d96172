package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/server/auth"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/dmitrijs2005/checkers/internal/server/services"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

const (
	msgAuthenticationRequired = "Authentication required"
	msgCapabilityRequired     = common.AdministrateCheckersCapability + " for plugin checks not permitted"
)

// authenticate verifies the bearer token and stores the principal. The
// acting author is put on the request context for revision metadata.
func (s *HTTPServer) authenticate(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader(common.AuthorizationHeaderName))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		abort(c, http.StatusUnauthorized, msgAuthenticationRequired)
		return
	}

	p, err := auth.ParseToken(strings.TrimSpace(token), s.jwtSecret)
	if err != nil {
		s.logger.Debug(c.Request.Context(), "token rejected", "error", err)
		abort(c, http.StatusUnauthorized, msgAuthenticationRequired)
		return
	}

	c.Set(principalKey, p)
	ctx := services.WithAuthor(c.Request.Context(), models.Author{Name: p.Name, Email: p.Email})
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// requireCapability lets only principals holding administrateCheckers reach
// mutating handlers.
func (s *HTTPServer) requireCapability(c *gin.Context) {
	v, _ := c.Get(principalKey)
	p, _ := v.(*auth.Principal)
	if !p.Can(common.AdministrateCheckersCapability) {
		abort(c, http.StatusForbidden, msgCapabilityRequired)
		return
	}
	c.Next()
}

// observe records request metrics and logs failed requests.
func (s *HTTPServer) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	s.metrics.Request(c.Request.Method, route, strconv.Itoa(status), time.Since(start).Seconds())

	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "route", route, "status", status, "errors", c.Errors.String())
	}
}
