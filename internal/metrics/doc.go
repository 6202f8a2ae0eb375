// Package metrics records course build and mirror metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics are
// never a nil check away:
//
//	type Batch struct {
//	    recorder metrics.Recorder
//	}
//
// When metrics are configured the CLI swaps in a PrometheusRecorder. A
// one-shot run writes the registry to a node-exporter textfile with
// WriteTextfile; scheduled mode serves it over HTTP with HTTPHandler.
package metrics
