// Package stage provides the stages of the protected chain:
//
//	context-load        restore the principal from the session cookie
//	exception-boundary  turn authentication and access errors into redirects
//	logout              end the session on the logout path
//	form-login          process the posted login form
//	remember-me         log in from a remember-me cookie
//	access-decision     require the configured authority
//
// Stages are plain structs configured by field; see package security for
// how they are assembled.
package stage
