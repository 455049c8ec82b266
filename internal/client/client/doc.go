// Package client is the request wrapper every lab API call goes through.
//
// # Overview
//
// Client.Do resolves a path against the API prefix, attaches the stored
// bearer token, encodes the body and classifies the response:
//
//   - 2xx: the body is decoded tolerantly (empty becomes {}, non-JSON text is
//     kept as a string). Malformed bodies never produce errors.
//   - 401: the token store is cleared, unauthorized hooks run, and an *Error of
//     KindUnauthorized is returned.
//   - any other status: an *Error of KindRequestFailed carrying the status and
//     the parsed payload.
//   - transport failures: an *Error of KindUnavailable wrapping the cause.
//
// # Error Handling
//
// Every *Error matches one of the sentinels with errors.Is: ErrUnauthorized,
// ErrRequestFailed or ErrUnavailable. Use errors.As to reach the status,
// message and payload.
//
// Client is safe for concurrent use.
package client
