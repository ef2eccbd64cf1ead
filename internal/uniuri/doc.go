// Package uniuri generates cryptographically secure random strings for activation codes
// and session identifiers.
package uniuri
