// Package api contains the request gateway: the single choke point through
// which every outbound HTTP call of the client travels.
//
// # Overview
//
// The package provides:
//  1. A Gateway that composes an explicit middleware pipeline around the
//     send operation: a request-ID stage, a credential-attach stage that
//     reads the credential store and adds "Authorization: Bearer …", and a
//     response-classification stage that maps status codes to sentinel
//     errors.
//  2. The unauthorized-recovery protocol: a 401 response triggers, at most
//     once per logical request, a token refresh through the pluggable
//     TokenRefresher; on success the refreshed pair is saved and the request
//     replayed once, on failure the store is cleared and the session-expired
//     handler fired. A 401 on the replay is final.
//  3. Typed calls for every server endpoint the client consumes: auth
//     (Login/Signup/Me), files (list/content/download), and the admin
//     surface (upload/delete files, list/delete users).
//
// # Error Handling
//
// Transport failures surface as common.ErrUnavailable. Denied authorization
// surfaces as common.ErrUnauthorized (or common.ErrForbidden for role
// rejections). Client errors carrying a server-side {detail} body surface as
// *APIError, which unwraps to the matching sentinel so callers can use
// errors.Is while still having a displayable message.
//
// Credential-store failures are swallowed by the pipeline: a request is sent
// unauthenticated rather than failing because local storage misbehaved.
package api
