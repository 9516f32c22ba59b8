// Package config loads lineserve process configuration.
//
// Configuration comes from an optional YAML file, then command-line
// overrides, then secret resolution of credential fields. Validate reports
// the problems that must stop the process before it serves: no file path,
// or a cache size that is not positive.
//
//	file:
//	  path: /data/big.txt
//	cache:
//	  size: 10000
//	server:
//	  addr: ":8080"
//	  charset: iso-8859-1
//	auth:
//	  api_keys: ["secretref:env:LINESERVE_KEY"]
package config
