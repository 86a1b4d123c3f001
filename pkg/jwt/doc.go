// Package jwt signs and verifies HS256 access tokens with
// github.com/golang-jwt/jwt/v5.
//
//	svc, err := jwt.NewFromString(os.Getenv("JWT_SECRET"), jwt.WithIssuer("livefeed"))
//	if err != nil {
//		return err
//	}
//
//	token, err := svc.Generate(jwt.Claims{
//		RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1"},
//		Role:             "admin",
//	}, time.Hour)
//
//	claims, err := svc.Parse(token)
//	if errors.Is(err, jwt.ErrExpiredToken) {
//		// ask the client to log in again
//	}
package jwt
