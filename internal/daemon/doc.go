// Package daemon runs coursebuilder's long-lived modes: periodic mirroring
// on a gocron schedule, rebuilding courses when their exports change on disk,
// and serving Prometheus metrics while either is active.
package daemon
