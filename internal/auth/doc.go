// Package auth registers users against activation codes, authenticates them with
// Argon2id hashed passwords and guards routes with session middleware.
package auth
