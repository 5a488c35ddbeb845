// Package snapshot reads and writes portable backups of a vectis store.
//
// A snapshot is a short binary header followed by a compressed stream of
// newline-delimited JSON records, one per key/value entry or vector:
//
//	"VSNP" | version (1 byte) | compression (1 byte) | records...
//
//	{"kind":"kv","key":"user:1","value":"alice"}
//	{"kind":"vector","key":"doc:1","vector":[0.1,0.2,0.3]}
//
// Export walks a live store through the client and Import replays a
// snapshot into another one. Save and Load do the same against a
// blobstore.Store, so snapshots can live on local disk, MinIO or S3.
package snapshot
