// Package custodytest provides mocks and helpers for testing the
// custodian's extensions. Mocks cover the transaction, message,
// handler, decorator and authenticator interfaces; helpers generate
// throwaway ed25519 keys and conditions.
package custodytest
