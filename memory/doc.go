// Package memory provides the persistent vector memory behind the studio's
// agents: an append-only, embedding-indexed log of stories (narrative
// summaries of user actions) supporting semantic similarity search,
// time-window queries, and project-scoped queries.
//
// Architecture:
//   - Store: co-indexed story records with vector search
//     (flat: durable on-disk artifacts; chromem: in-memory chromem-go)
//   - Embedder: text-to-vector conversion
//     (googleai for hosted, onnx for offline, mock for tests)
//   - Manager: the public surface — add, search, stats, flush, clear
//
// Positions are the primary key: the i-th appended story keeps position i
// for its lifetime. Stories are never edited or individually deleted; the
// only destructive operation is Manager.Clear with explicit confirmation.
//
// The store is single-writer and single-process. On-disk artifacts are owned
// exclusively by one process; no cross-process locking is provided.
package memory
