// Package auth issues and checks the bearer tokens of the host tooling API.
//
// Tokens are HS256 JWTs signed with api.auth.secret. Each carries a scope:
//   - read: snapshots, devices and the WebSocket stream
//   - control: everything read allows, plus writing switch cells
//
// There are no user accounts; whoever holds the secret mints tokens with
// `cakeboard token [scope]`.
package auth
