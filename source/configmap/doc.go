// Package configmap implements source.Source for configuration held in
// Kubernetes ConfigMaps. Paths name a key as "name/key" or
// "namespace/name/key"; the cluster is reached through client-go using a
// kubeconfig file or the in-cluster service account.
package configmap
