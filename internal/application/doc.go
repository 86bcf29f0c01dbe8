// Package application provides the health monitoring module: it wires the
// resolved configuration into a metrics registry, the HTTP router and server,
// and the optional remote-write pusher, and owns their start/stop lifecycle.
package application
