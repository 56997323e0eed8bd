package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the access-token claim set shared by the issuer and the
// authentication middleware. Subject carries the user id, ID the token id.
type AppClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
