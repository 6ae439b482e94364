// Package ports declares the interfaces between the engine core and its
// external collaborators: the session state store, the per-session lock, and
// the capabilities nodes invoke (identity store, incident store, knowledge
// base, language model). Adapters implement these; the core depends only on
// the interfaces.
package ports
