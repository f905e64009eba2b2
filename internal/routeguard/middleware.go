package routeguard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractpay/internal/session"
)

// Middleware gates protected routes on the session store. While the store
// is still restoring, requests get a retryable waiting response instead of
// a redirect, so a slow restore never flashes the login screen.
func Middleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := store.Snapshot()
		switch Decide(snap) {
		case RenderWaiting:
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			c.Abort()
		case RedirectToLogin:
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
		default:
			c.Set("user", snap.User)
			c.Next()
		}
	}
}

// CurrentUser returns the session user the guard attached to the request.
func CurrentUser(c *gin.Context) *session.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, ok := v.(*session.User)
	if !ok {
		return nil
	}
	return u
}
