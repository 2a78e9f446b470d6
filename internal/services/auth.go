package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/ctxutil"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// JWTClaims are issued by the external identity provider. UserID is
// preferred; Subject is used when it is absent.
type JWTClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenVerifier interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type tokenVerifier struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewTokenVerifier(log *logger.Logger, secret, issuer string) (TokenVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return &tokenVerifier{
		log:    log.With("service", "TokenVerifier"),
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
	}, nil
}

func (tv *tokenVerifier) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if strings.TrimSpace(tokenString) == "" {
		return ctx, apierr.AuthRequired("missing token")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if tv.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tv.issuer))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tv.secret, nil
	}, opts...)
	if err != nil {
		return ctx, apierr.AuthRequired(fmt.Sprintf("failed to parse token: %v", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.AuthRequired("invalid or expired token")
	}
	userID, err := OwnerIDFromSubject(claims.UserID, claims.Subject)
	if err != nil {
		return ctx, apierr.AuthRequired(err.Error())
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      userID,
		TokenString: tokenString,
	}), nil
}

// OwnerIDFromSubject maps a provider user id onto a UUID. Non-UUID ids get a
// stable name-based UUID.
func OwnerIDFromSubject(candidates ...string) (uuid.UUID, error) {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if id, err := uuid.Parse(c); err == nil {
			return id, nil
		}
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte("onboarding-user:"+c)), nil
	}
	return uuid.Nil, fmt.Errorf("token has no user id")
}

// SignToken issues an HS256 token; used by the CLI and tests.
func SignToken(secret string, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
