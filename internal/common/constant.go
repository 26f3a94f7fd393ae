package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// BcryptCost is the fixed work factor for password hashing.
	BcryptCost = 10
)
