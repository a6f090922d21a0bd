// Package httpapi serves name searches and processing decisions over HTTP.
//
// Routes:
//
//	POST /search    {"firstName": "...", "lastName": "..."} or {"name": "..."}
//	POST /process   {"id": "...", "name": "...", "source": "...", "probability": 1, "action": "mask"}
//	GET  /targets   configured search targets
//	GET  /healthz   liveness
//	GET  /metrics   Prometheus exposition, when metrics are configured
//
// A search always answers 200 with a JSON array, empty when the request names
// nobody or nothing matches. Only a malformed body is rejected. Sources that fail are left out of the array; pass ?detail=true to
// get the per-target summary alongside the records.
package httpapi
