// Package metrics owns the Prometheus registry exposed by the health monitor.
// Runtime collectors are grouped the way JVM binders are (memory, gc, thread,
// classloader, processor, jvm info) so each group can be toggled on its own;
// for a Go process the groups report the runtime equivalents.
package metrics
