// Package middleware holds the launch API's HTTP middleware. Recovery,
// RequestID, RequestLogger and BodySizeLimit wrap the whole ServeMux; Auth
// and RateLimit are Gin handlers mounted on the launch routes.
package middleware
