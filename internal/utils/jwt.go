package utils // package utils provides helper functions for token creation, hashing and OTP codes

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
    "github.com/google/uuid"

    "github.com/Subham7008/Quick-Serve/internal/model"
)

// ErrInvalidClaims is returned when a token verifies but lacks a required claim.
var ErrInvalidClaims = errors.New("invalid token claims")

// TokenSubject describes who a token is issued to.  Identifier is the
// user_name for staff users and the contact number for shop owners.
type TokenSubject struct {
    ID         string
    Identifier string
    Kind       model.SubjectKind
    Role       string
}

// AccessToken is a signed JWT together with its registry id and expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    JTI   string    // token id, key of the session row
    Exp   time.Time // the UTC expiration time
}

// Claims is the verified content of a token.
type Claims struct {
    TokenSubject
    JTI       string
    IssuedAt  time.Time
    ExpiresAt time.Time
}

// NewAccessToken builds and signs an HS256 JWT.  Besides the standard sub,
// exp and iat claims it carries identifier, kind, role and a fresh jti.
func NewAccessToken(secret string, sub TokenSubject, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    jti := uuid.NewString()
    claims := jwt.MapClaims{
        "sub":        sub.ID,
        "identifier": sub.Identifier,
        "kind":       string(sub.Kind),
        "role":       sub.Role,
        "jti":        jti,
        "exp":        exp.Unix(),
        "iat":        now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry and checks that
// sub, kind and jti are present.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithIssuedAt(),
    )
    if err != nil {
        return Claims{}, err
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok || !tok.Valid {
        return Claims{}, ErrInvalidClaims
    }

    str := func(k string) string {
        s, _ := mc[k].(string)
        return s
    }
    c := Claims{
        TokenSubject: TokenSubject{
            ID:         str("sub"),
            Identifier: str("identifier"),
            Kind:       model.SubjectKind(str("kind")),
            Role:       str("role"),
        },
        JTI: str("jti"),
    }
    if c.ID == "" || c.JTI == "" {
        return Claims{}, ErrInvalidClaims
    }
    if c.Kind != model.SubjectUser && c.Kind != model.SubjectShopOwner {
        return Claims{}, ErrInvalidClaims
    }
    if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
        c.ExpiresAt = exp.Time
    }
    if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
        c.IssuedAt = iat.Time
    }
    return c, nil
}
