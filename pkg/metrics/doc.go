// Package metrics defines the Prometheus metrics of a mailshot run, covering
// contact loading, mail delivery and campaign outcomes, and can dump them to a
// node-exporter textfile once the run is over.
package metrics
