// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the commands it can carry out (validating,
// dumping and running trees, managing the catalog), decoupled from any
// specific entrypoint like a CLI or server.
package app
