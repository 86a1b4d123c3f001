// Package middleware provides gin middleware for the livefeed HTTP API.
//
//	r := gin.New()
//	r.Use(
//		middleware.Recovery(log),
//		middleware.RequestID(),
//		middleware.Logging(middleware.LoggingConfig{Logger: log}),
//		middleware.CORS(middleware.CORSConfig{AllowedOrigins: origins}),
//	)
//
//	admin := r.Group("/admin", middleware.JWT(middleware.JWTConfig{
//		Service:        tokens,
//		TokenExtractor: middleware.JWTFromMultiple(middleware.JWTFromAuthHeader(), middleware.JWTFromQuery("access_token")),
//	}))
//
// RequestID stores the id in the request context; pass
// middleware.RequestIDExtractor to logger.WithContextExtractors to stamp it
// on every log record.
package middleware
