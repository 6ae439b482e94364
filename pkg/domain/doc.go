// Package domain contains the conversation state model and the node contract.
//
// A State is the single aggregate threaded through every step of a session.
// Nodes receive a snapshot and return a NodeResult: a partial Update that the
// engine merge-applies over a fresh copy, assistant replies to append to the
// transcript, and a control decision. The transcript is append-only and is
// never reachable from an Update.
package domain
