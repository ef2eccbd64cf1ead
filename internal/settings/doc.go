// Package settings resolves hierarchical per-user and per-account configuration.
//
// Every setting has a catalog default. A chain of scopes, most specific first, may
// override it; the first scope in the chain that stores an override wins. Writes and
// resets always target the head of the chain, so resetting an account override exposes
// the user override below it, or the default when there is none.
package settings
