package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"recipehub/internal/logging"
	"recipehub/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CheckUserKey = "user"
	UserIDKey    = "user_id"

	// SessionUserKey is the cookie session field holding the user id.
	SessionUserKey = "user_id"
)

// LoadUser resolves the acting user from an HS256 bearer token or, failing
// that, from the cookie session. Ids that do not resolve to a user leave the
// request anonymous.
func LoadUser(users store.Users, jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		id, ok := bearerUserID(c, secret)
		if !ok {
			id, ok = sessionUserID(c)
		}
		if ok {
			user, err := users.GetUser(c.Request.Context(), id)
			if err == nil {
				c.Set(CheckUserKey, user)
				c.Set(UserIDKey, user.ID)
			} else {
				logging.Ctx(c.Request.Context()).Debug().Err(err).Uint("user_id", id).Msg("credential for unknown user")
			}
		}
		c.Next()
	}
}

func bearerUserID(c *gin.Context, secret []byte) (uint, bool) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || len(secret) == 0 {
		return 0, false
	}

	token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected bearer token")
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	if v, ok := claims["user_id"]; ok {
		return claimID(v)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, false
	}
	return claimID(sub)
}

// claimID accepts numeric and string encodings of a user id.
func claimID(v any) (uint, bool) {
	switch id := v.(type) {
	case float64:
		if id <= 0 || id != float64(uint(id)) {
			return 0, false
		}
		return uint(id), true
	case string:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

func sessionUserID(c *gin.Context) (uint, bool) {
	switch id := sessions.Default(c).Get(SessionUserKey).(type) {
	case uint:
		return id, id != 0
	case int:
		return uint(id), id > 0
	case int64:
		return uint(id), id > 0
	case string:
		return claimID(id)
	}
	return 0, false
}

// AuthRequired rejects anonymous requests with 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the acting user id, or 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	id, _ := c.Get(UserIDKey)
	uid, _ := id.(uint)
	return uid
}

// SignToken issues an HS256 token for userID. It backs local tooling and
// tests; the service itself does not hand out tokens.
func SignToken(jwtSecret string, userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
	})
	return token.SignedString([]byte(jwtSecret))
}
