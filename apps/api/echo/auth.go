package echoapi

import (
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core"
)

const (
	contextTokenKey = "userToken"
	regKeyParam     = "key"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email        string   `json:"email,omitempty"`
	Name         string   `json:"name,omitempty"`
	IsInstructor bool     `json:"is_instructor,omitempty"`
	Courses      []string `json:"courses,omitempty"` // courses taught
}

// NewClaims returns the claims of a participant. `courses` lists the courses an instructor teaches.
func NewClaims(conf *core.Config, email, name string, isInstructor bool, courses ...string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   email,
			Audience:  "Feedback",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:        email,
		Name:         name,
		IsInstructor: isInstructor,
		Courses:      courses,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

type jwtAuth struct {
	config middleware.JWTConfig
}

func newJWTAuth(conf *core.Config) jwtAuth {
	return jwtAuth{
		config: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

// required rejects requests without a valid token.
func (a jwtAuth) required() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(a.config)
}

// unlessRegKey lets requests carrying a registration key through without a token.
func (a jwtAuth) unlessRegKey() echo.MiddlewareFunc {
	config := a.config
	config.Skipper = func(ctx echo.Context) bool {
		return ctx.QueryParam(regKeyParam) != ""
	}
	return middleware.JWTWithConfig(config)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (c Claims) teaches(courseID string) bool {
	if !c.IsInstructor {
		return false
	}
	courses := append([]string(nil), c.Courses...)
	sort.Strings(courses)
	i := sort.SearchStrings(courses, courseID)
	return i < len(courses) && courses[i] == courseID
}
