// Package store implements the durable snapshot log backing the telemetry
// DVR.
//
// Architecture:
//
//	┌───────────┐     ┌──────────────┐     ┌──────────────┐
//	│  Append   │────▶│  in-memory   │────▶│  staging     │
//	│  / reads  │     │  sorted set  │     │  file +      │
//	└───────────┘     │  (pruned)    │     │  rename      │
//	                  └──────────────┘     └──────────────┘
//
// The store provides:
//   - Two variants selected once at Open: ephemeral (":memory:") and
//     file-backed
//   - A rolling retention window enforced lazily on every access
//   - Crash-safe persistence via a write-to-staging-then-rename protocol;
//     the primary file is never observed in a partially-written state
//   - Recovery of the last fully-written generation from an orphaned
//     staging file
//   - Quarantine and best-effort import of incompatible legacy SQLite files
//   - Tolerance for partially corrupted primary files (well-formed lines
//     are kept, the rest are dropped)
//
// All operations on a single handle are serialized by one coarse lock;
// correctness under crash matters here, throughput does not.
package store
