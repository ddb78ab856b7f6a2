// Package jwt manages access-token issuance and verification using configured signing keys
// and strict validation semantics. Tokens carry the profile claims (name, role, activity)
// that offline session resolution reads.
package jwt
