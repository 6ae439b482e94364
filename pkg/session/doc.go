/*
Package session orchestrates safe concurrent access to conversation state.

Every external turn is a read-modify-write of one session; this package
guarantees single-writer semantics per session id with reference-counted local
locks, optionally combined with a distributed lock for multi-replica
deployments.
*/
package session
