package httpserver

import (
	"errors"
	"log"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCtxKey = "session"
	userCtxKey    = "user"
)

// sessionMiddleware loads the visitor's session before the handler runs and saves it afterwards.
// An unknown or expired session keeps the id from a well-formed cookie so the persisted cart is
// found again.
func sessionMiddleware(store session.Store, cookie string, maxAge int, secure bool, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookie)
		sess, err := store.Get(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				logger.Printf("session: load failed id=%s err=%v", id, err)
			}
			if _, perr := uuid.Parse(id); perr != nil {
				id = session.NewID()
			}
			sess = &domain.Session{ID: id}
		}
		c.SetCookie(cookie, sess.ID, maxAge, "/", "", secure, true)
		c.Set(sessionCtxKey, sess)

		c.Next()

		if err := store.Save(c.Request.Context(), sess); err != nil {
			logger.Printf("session: save failed id=%s err=%v", sess.ID, err)
		}
	}
}

// renewSession moves the current session to a fresh id once it gains privileges.
// The old id is dropped from the store so a planted cookie cannot ride along.
func (h *handlers) renewSession(c *gin.Context) (*domain.Session, error) {
	sess := currentSession(c)
	oldID := sess.ID
	if err := h.deps.Carts.Rekey(c.Request.Context(), sess, session.NewID()); err != nil {
		return nil, err
	}
	if err := h.deps.Sessions.Delete(c.Request.Context(), oldID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		h.logger.Printf("session: drop failed id=%s err=%v", oldID, err)
	}
	hdr := c.Writer.Header()
	var kept []string
	for _, v := range hdr.Values("Set-Cookie") {
		if !strings.HasPrefix(v, h.deps.SessionCookie+"=") {
			kept = append(kept, v)
		}
	}
	hdr.Del("Set-Cookie")
	for _, v := range kept {
		hdr.Add("Set-Cookie", v)
	}
	c.SetCookie(h.deps.SessionCookie, sess.ID, h.deps.SessionMaxAge, "/", "", h.deps.CookieSecure, true)
	return sess, nil
}

func currentSession(c *gin.Context) *domain.Session {
	if v, ok := c.Get(sessionCtxKey); ok {
		if sess, ok := v.(*domain.Session); ok {
			return sess
		}
	}
	return &domain.Session{ID: session.NewID()}
}
