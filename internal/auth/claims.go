package auth

import "time"

// AccessClaims are the decrypted contents of an access token. SessionID
// ties the token to a stored session so logout revokes it.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
