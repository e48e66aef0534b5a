// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides user identity: IDs, password hashing, and session tokens.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword("hunter22")
	err = auth.CheckPassword(hash, "hunter22") // nil on match

CheckPassword returns ErrInvalidCredentials on mismatch so callers cannot tell
a wrong password from a malformed hash.

# Session Tokens

Tokens are HS256 JWTs carrying the user ID, username, and staff flag:

	tokens := auth.NewTokens(cfg.SessionSecret, 24*time.Hour)
	signed, err := tokens.Issue(user, time.Now())
	claims, err := tokens.Parse(signed)

The API reads them from "Authorization: Bearer <token>"; the HTML pages read
them from the session cookie.
*/
package auth
