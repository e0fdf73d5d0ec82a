package configmap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/byte4ever/confsum/source"
)

// DefaultNamespace is used when neither the path nor the
// configuration names one.
const DefaultNamespace = "default"

// Config holds the settings needed to reach a cluster.
type Config struct {
	// Kubeconfig is the path to a kubeconfig file. When
	// empty, ~/.kube/config is used outside a cluster
	// and the in-cluster configuration inside one.
	Kubeconfig string
	// Namespace applies to paths that do not carry one.
	Namespace string
}

// Provider reads configuration stored under a ConfigMap
// key.
//
// Pattern: Strategy -- implements source.Source.
type Provider struct {
	client    kubernetes.Interface
	namespace string
}

// NewProvider builds a clientset from cfg and returns a
// Provider backed by it.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating configmap source"

	kubeconfig := cfg.Kubeconfig
	if kubeconfig == "" {
		if _, ok := os.LookupEnv(
			"KUBERNETES_SERVICE_HOST",
		); !ok {
			kubeconfig = filepath.Join(
				homedir.HomeDir(),
				".kube", "config",
			)
		}
	}

	restConfig, err := clientcmd.BuildConfigFromFlags(
		"", kubeconfig,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: building kubeconfig: %w",
			errCtx, err,
		)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: building clientset: %w",
			errCtx, err,
		)
	}

	return NewProviderForClient(clientset, cfg.Namespace), nil
}

// NewProviderForClient returns a Provider using an existing
// client. An empty namespace means DefaultNamespace.
func NewProviderForClient(
	client kubernetes.Interface,
	namespace string,
) *Provider {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Provider{
		client:    client,
		namespace: namespace,
	}
}

// Fetch returns the value stored at path, which is either
// "name/key" or "namespace/name/key". Text data is
// preferred over binary data. A missing ConfigMap or key
// wraps source.ErrNotFound.
func (p *Provider) Fetch(
	ctx context.Context,
	path string,
) ([]byte, error) {
	const errCtx = "fetching configmap"

	ns, name, key, err := p.parsePath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	cm, err := p.client.CoreV1().ConfigMaps(ns).Get(
		ctx, name, metav1.GetOptions{},
	)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf(
				"%s %s/%s: %w",
				errCtx, ns, name, source.ErrNotFound,
			)
		}

		return nil, fmt.Errorf(
			"%s %s/%s: %w", errCtx, ns, name, err,
		)
	}

	if val, ok := cm.Data[key]; ok {
		return []byte(val), nil
	}

	if val, ok := cm.BinaryData[key]; ok {
		return val, nil
	}

	return nil, fmt.Errorf(
		"%s %s/%s: key %q: %w",
		errCtx, ns, name, key, source.ErrNotFound,
	)
}

// parsePath splits a ConfigMap path into namespace, name
// and key.
func (p *Provider) parsePath(
	path string,
) (ns, name, key string, err error) {
	parts := strings.Split(path, "/")

	switch len(parts) {
	case 2:
		ns, name, key = p.namespace, parts[0], parts[1]
	case 3:
		ns, name, key = parts[0], parts[1], parts[2]
	default:
		return "", "", "", fmt.Errorf(
			"path %q must be name/key or namespace/name/key",
			path,
		)
	}

	if ns == "" || name == "" || key == "" {
		return "", "", "", fmt.Errorf(
			"path %q has an empty segment", path,
		)
	}

	return ns, name, key, nil
}
