// Package auth authenticates gateway callers and gates them on a role.
//
// Callers present a bearer JWT. The JWTAuthenticator validates it and builds
// an Identity from its claims; a RoleAuthorizer then requires the configured
// role (admin by default). Guard combines both for transport layers, and the
// resulting identity travels in the request context so usage records can
// name the user.
package auth
