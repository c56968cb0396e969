// Package auth provides authentication for the admin console.
//
// A Manager holds an ordered list of providers. Each provider declares the
// credential kinds it supports; unsupported kinds are skipped, failures are
// absorbed and the next provider is tried. The first success wins. When every
// applicable provider fails the Manager returns a single collapsed
// AuthenticationError so that callers cannot tell an unknown user from a
// wrong secret or a bad token.
//
// Secret comparison goes through a SecretMatcher, and failed form logins can
// be throttled per username with a LoginLimiter.
package auth
