// Package auth is the account core of the Zelvyn API: signup, password and
// Google login, OTP based password reset and email verification, and the
// fiber middleware that turns a bearer token or session cookie into a *User.
//
// Results:
//   - Every Service operation returns a Result, never a raw error. Domain
//     errors are go-errors values whose Code picks the HTTP status and whose
//     Message is what the client sees. Server side failures without a text
//     code collapse into "Internal server error.".
//
// Tokens:
//   - TokenService issues HS256 session tokens. TokenVerifier routes a token
//     by its header and issuer to the local service or to a FederatedVerifier
//     such as provider/google, and never falls through from one to the other.
//
// Background work:
//   - Notification emails run on a Dispatcher, detached from the request.
//     Their failures are logged and never change the operation result.
//
// Activity sinks:
//   - ActivitySink receives signup, login, reset and verification events.
//     Sinks run best effort; errors are logged.
package auth
