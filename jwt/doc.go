// Package jwt signs and verifies session tokens. A token binds an account id
// to the "auth" purpose; it carries no expiry and is only trusted by the
// engine when it also appears on the account's stored token list.
package jwt
