package util

import (
	"quiz_agent_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID             uint           `json:"user_id"`
	Role               model.UserRole `json:"role"`
	SchoolID           uint           `json:"school_id,omitempty"`
	CreatedByTeacherID uint           `json:"created_by_teacher_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() model.Actor {
	return model.Actor{
		ID:                 c.UserID,
		Role:               c.Role,
		SchoolID:           c.SchoolID,
		CreatedByTeacherID: c.CreatedByTeacherID,
	}
}

func GenerateJWT(user *model.User, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		UserID:             user.ID,
		Role:               user.Role,
		SchoolID:           user.SchoolID,
		CreatedByTeacherID: user.CreatedByTeacherID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetActor 未登录时返回游客
func GetActor(c *gin.Context) model.Actor {
	if claims := GetUserFromContext(c); claims != nil {
		return claims.Actor()
	}
	return model.GuestActor()
}
