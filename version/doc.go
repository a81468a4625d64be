// Package version carries build metadata for the gonogo binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/gonogo/version.Version=1.2.0 \
//	  -X github.com/kbukum/gonogo/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Anything left unset falls back to the module's embedded VCS stamp.
package version
