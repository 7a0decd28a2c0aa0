// Package secret resolves secret-marked configuration values.
//
// A marked value has the form:
//
//	secretref:<provider>:<ref>
//
// for example secretref:env:IDP_PASSWORD or secretref:aws-sm:observability/idp#password.
// Providers are registered on a Resolver by name; the resolver never logs
// resolved values.
package secret
