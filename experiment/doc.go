// Package experiment serves the go/no-go task: it builds the per-process
// parameter bundle, renders the experiment page and records participant
// submissions through a store.Handle.
//
// Routes registered by Handler.Register:
//
//	GET  /                 experiment page with PARAMS
//	POST /experiment-data  stores the JSON body as {data: body}
//	GET  /*                static files from public_dir and static_mounts
package experiment
