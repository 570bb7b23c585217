// Package types defines the data model shared across archup: steps and the
// state of a pipeline run, the detected environment, fetch manifests, and the
// filesystem abstraction used by components that touch disk.
package types
