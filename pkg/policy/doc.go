// Package policy manages the active policy identity: the opaque version token
// (the "constitutional hash") that tags every validation verdict.
//
// The identity is held in a Holder that supports torn-read-free atomic
// snapshots and atomic rotation. Rotation to the same identity is a no-op;
// rotation to a new identity notifies subscribers, which is how the
// validation cache and telemetry learn that previously cached verdicts are
// stale.
//
// Three identity sources are provided:
//
//   - static: the identity is a configuration literal
//   - file: the identity is the trimmed contents of a file, optionally
//     watched with fsnotify for automatic rotation
//   - git: the identity is the HEAD commit hash of a policy repository,
//     polled for new commits
//
// The package never interprets the identity. It is an opaque token; policy
// semantics live entirely in the caller-provided decision function.
package policy
