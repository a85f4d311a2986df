// Package auth guards the launch API.
//
// Two credentials are accepted:
//
//   - a bearer JWT carrying the "launch" scope, issued by `bg token`
//     (see auth/jwt), and
//   - a static key in the X-Api-Key header, verified against the bcrypt
//     hash printed by `bg hash-key` (see auth/apikey).
//
// Config lives under server.auth:
//
//	server:
//	  auth:
//	    jwt:
//	      ttl: 1h
//	    api_key_hash: "$2a$12$..."
//
// The JWT secret is best supplied as BG_SERVER_AUTH_JWT_SECRET.
//
// Authentication may only be disabled when the server binds a loopback
// address.
package auth
