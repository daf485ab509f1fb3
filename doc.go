// Package nsmap implements a string map whose entries live in an external
// key-value store (Redis by default). Many independent maps share one store;
// each map tags its keys with a namespace token.
//
// Components:
//   - Map: the collection API (Get/Put/Remove/Keys/Values/Entries/Len...).
//   - store.Store: get/set/del plus glob scan. Redis, in-memory, BigCache and
//     bbolt implementations live under store/.
//   - token.Source: generates namespace tokens (10 alphanumerics by default).
//
// Keys:
//
//	<logical key><token>   - one entry of the map holding <token>
//
// Two maps with the same token are the same map. Use Open to reattach to a
// namespace created elsewhere.
//
// Lifecycle:
//
//	m, _ := nsmap.New(nsmap.Options{})
//	defer m.Close(ctx) // deletes every key of the namespace unless m.Persist() was called
//
// Close is the only guaranteed purge point. A map that becomes unreachable
// without Close is purged by a garbage-collector cleanup at some later,
// unspecified time; do not rely on it.
//
// Bulk reads (Len, Keys, Values, Entries, ContainsValue, Clear) are a scan
// followed by per-key calls and are not atomic. Concurrent writers sharing the
// token can make them over- or under-report.
package nsmap
