// Package auth handles identity for the BloodLink console.
//
// Sign-in is delegated to an external identity provider. After the user
// signs in there, the provider redirects back with an HS256 JWT that carries:
//
//   - sub: the staff member's id
//   - role: "admin", "doctor" or "staff"
//   - given_name, family_name, email: optional display claims
//
// JWTVerifier checks the token with the shared identity.jwt_secret and
// produces an Identity. The web layer stores it in a server-side session and
// SessionMiddleware puts it on each request's context:
//
//	id := auth.MustFromContext(r.Context())
//
// The raw token travels with the Identity and is forwarded to the BloodLink
// backend as a bearer token (see BearerToken).
//
// # Shells
//
// HomePath sends admins to /admin/ and staff and doctors to /staff/.
// RequireRole guards each shell.
package auth
