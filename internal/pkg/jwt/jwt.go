package jwt

import (
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claim names carried by access tokens.
const (
	ClaimUserID     = "user_id"
	ClaimEmployeeID = "employee_id"
	ClaimRole       = "role"
	ClaimType       = "type"

	TokenTypeAccess = "access"
)

type Service interface {
	GenerateAccessToken(userID string, employeeID string, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken signs a token whose employee_id claim becomes the actor
// id of every request made with it.
func (j *JWTService) GenerateAccessToken(userID string, employeeID string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		ClaimUserID:     userID,
		ClaimEmployeeID: employeeID,
		ClaimRole:       string(role),
		ClaimType:       TokenTypeAccess,
		"exp":           expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}
