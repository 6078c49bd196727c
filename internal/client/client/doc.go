// Package client talks to the playground server over gRPC.
//
// GRPCClient keeps the access and refresh tokens from the last login,
// attaches the access token to every call and, when the server answers
// Unauthenticated with "token expired", trades the refresh token for a new
// pair and retries the call once.
//
// Status codes are mapped to sentinel errors callers match with errors.Is:
// ErrUnauthorized, ErrUnavailable and ErrAlreadyExists. Any other rejection
// comes back as *RemoteError carrying the server's message.
//
// A GRPCClient is meant for one console session and is not safe for
// concurrent use.
package client
