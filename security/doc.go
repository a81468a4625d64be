// Package security builds client TLS settings for outbound store
// connections.
//
//	store:
//	  uri: rediss://cache.internal:6380/0
//	  tls:
//	    ca_file: /etc/gonogo/ca.pem
package security
