// Package annotator stamps configuration fingerprints onto Kubernetes
// ConfigMaps. It reads multi-document YAML, computes the fingerprint of
// every ConfigMap data value and records it as a metadata annotation
// named "<prefix>/<key>", so that a workload can be rolled only when the
// significant content of its configuration changes. Other objects pass
// through unchanged.
package annotator
