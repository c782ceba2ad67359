package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	// HeaderUserID identifica o dono das metas
	HeaderUserID = "X-User-ID"

	// Parâmetros aceitos no handshake do websocket, onde o browser não envia headers
	queryToken  = "access_token"
	queryUserID = "user_id"
)

// AuthConfig contém a configuração do middleware de autenticação.
// Se TokenHash estiver preenchido, o token é comparado via bcrypt.
type AuthConfig struct {
	Token     string
	TokenHash string
	// AllowQuery aceita token e usuário na query string
	AllowQuery bool
}

// BearerAuth valida o token Bearer e exige o usuário no header X-User-ID.
// O usuário fica em c.Get("user_id") e no logger da requisição.
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c, cfg.AllowQuery)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "header Authorization ausente ou inválido, esperado: Bearer {token}",
			})
			return
		}

		if !cfg.valid(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "token inválido",
			})
			return
		}

		raw := c.GetHeader(HeaderUserID)
		if raw == "" && cfg.AllowQuery {
			raw = c.Query(queryUserID)
		}
		userID := SanitizeUserID(raw)
		if !ValidateUserID(userID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "header X-User-ID ausente ou inválido",
			})
			return
		}

		c.Set("user_id", userID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if allowQuery && c.Query(queryToken) != "" {
			return c.Query(queryToken), true
		}
		return "", false
	}

	// Extrai o token do formato "Bearer {token}"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (cfg AuthConfig) valid(token string) bool {
	if cfg.TokenHash != "" {
		return CheckToken(token, cfg.TokenHash)
	}
	if cfg.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) == 1
}

// HashToken cria o hash bcrypt usado em TOKEN_API_HASH
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckToken compara um token com seu hash bcrypt
func CheckToken(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
