// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and authorization for the circuit API.

# Credentials

Requests authenticate with an Authorization header, either a bearer token
or HTTP Basic:

	Authorization: Bearer <token>
	Authorization: Token <token>
	Authorization: Basic base64(email:password)

Tokens are random 24-byte secrets, URL-safe base64 encoded. Only the
HMAC-SHA256 of a token (keyed with the configured token salt) is stored:

	token, err := auth.IssueToken(ctx, repo, userID, "controller", salt)

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password)

# Authenticator

Authenticator resolves a *Principal from a request. Missing, malformed or
unknown credentials produce an errors.Unauthorized error (github.com/juju/errors),
which the HTTP layer maps to 401.

	authn := auth.NewAuthenticator(repo, cfg.TokenSalt)
	principal, err := authn.Authenticate(r)

The principal travels in the request context:

	ctx = auth.WithPrincipal(ctx, principal)
	principal := auth.PrincipalFrom(ctx)

# Policies

A Policy decides which circuits a principal relates to and whether it may
change them. Two policies exist, chosen by configuration:

  - "collaborator" (default): a user relates to every circuit it collaborates
    on and may write to those circuits.
  - "owner": a user relates only to circuits it owns.

Any authenticated principal may read the sub-resources of an existing
circuit; listing and detail reads are restricted by Relation in the query.
*/
package auth
