// Package driving provides interfaces for external actors
// (primary/inbound ports). The CLI and interactive shell drive the
// application through these interfaces.
package driving
