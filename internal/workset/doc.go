// Package workset defines the Working-Set Descriptor: the single mutable
// record describing one karaoke processing job.
//
// The Descriptor carries job identity, the resolved working folder (created
// eagerly at construction), the four-list file ledger (inputs, outputs,
// temps, keeps), step bookkeeping, and free-form metadata for inter-stage
// signaling. Stages mutate it only through accessor methods so the ledger
// invariants stay enforceable: a file is never both temp and keep, ledger
// entries are never removed, and output names derive from one stable base
// filename plus the fixed suffix vocabulary in names.go.
package workset
