// Package secret resolves credentials referenced from configuration.
//
// Configuration values pass through a Resolver before use. ${VAR} is
// expanded strictly: a missing variable is an error rather than an empty
// string. A value may also carry a reference of the form
//
//	secretref:<provider>:<ref>
//
// either as the whole value or inline ("Bearer secretref:env:TOKEN").
// The built-in providers are "env", which reads an environment variable,
// and "file", which reads a file such as a mounted Kubernetes secret.
package secret
