package httpserver

import (
	"log"
	"net/http"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "apiKey"

// requireUser admits requests from a logged-in session or carrying a valid API key header.
func requireUser(users UserService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess.User != nil {
			c.Set(userCtxKey, *sess.User)
			c.Next()
			return
		}
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "access denied"})
			return
		}
		u, err := users.Authenticate(c.Request.Context(), key)
		if err != nil {
			logger.Printf("auth: api key rejected path=%s err=%v", c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": domain.Message(err, "access denied")})
			return
		}
		c.Set(userCtxKey, *usersvc.SessionUser(u))
		c.Next()
	}
}

// requireAdmin rejects users without the admin flag. It must run after requireUser.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "unauthorised, please contact an administrator"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (domain.SessionUser, bool) {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return domain.SessionUser{}, false
	}
	u, ok := v.(domain.SessionUser)
	return u, ok
}

func (h *handlers) setup(c *gin.Context) {
	var req usersvc.SetupInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.deps.Users.Setup(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create user")
		return
	}
	sess, err := h.renewSession(c)
	if err != nil {
		h.fail(c, err, "failed to create user")
		return
	}
	sess.User = usersvc.SessionUser(u)
	c.JSON(http.StatusOK, gin.H{"message": "user account created", "userId": u.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.deps.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": domain.Message(err, "login failed")})
		return
	}
	sess, err := h.renewSession(c)
	if err != nil {
		h.fail(c, err, "login failed")
		return
	}
	sess.User = usersvc.SessionUser(u)
	c.JSON(http.StatusOK, gin.H{"message": "login successful"})
}

func (h *handlers) logout(c *gin.Context) {
	currentSession(c).User = nil
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *handlers) createAPIKey(c *gin.Context) {
	u, _ := currentUser(c)
	key, err := h.deps.Users.CreateAPIKey(c.Request.Context(), u.ID)
	if err != nil {
		h.fail(c, err, "failed to generate API key")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "API key generated", "apiKey": key})
}
