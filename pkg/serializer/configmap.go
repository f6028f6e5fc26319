package serializer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/clint/pkg/defaults"
	"github.com/NVIDIA/clint/pkg/k8s/client"
)

const managedByLabel = "app.kubernetes.io/managed-by"

// kubeClient returns the client used for ConfigMap destinations. It is a
// variable so tests can substitute a fake clientset.
var kubeClient = func(kubeconfig string) (kubernetes.Interface, error) {
	if kubeconfig == "" {
		cs, _, err := client.GetKubeClient()
		return cs, err
	}
	cs, _, err := client.BuildKubeClient(kubeconfig)
	return cs, err
}

// ParseConfigMapURI splits cm://namespace/name.
func ParseConfigMapURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), ConfigMapURIScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: missing %s prefix", uri, ConfigMapURIScheme)
	}
	namespace, name, ok := strings.Cut(rest, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return namespace, name, nil
}

// DataKey is the ConfigMap data key holding a document in format.
func DataKey(format Format) string {
	if format == FormatYAML {
		return "data.yaml"
	}
	return "data.json"
}

// ConfigMapWriter stores a document in a ConfigMap, creating it or
// replacing its data.
type ConfigMapWriter struct {
	format    Format
	namespace string
	name      string
	client    kubernetes.Interface

	kubeconfig string
}

// NewConfigMapWriter creates a ConfigMapWriter. A nil client is resolved
// from the default kubeconfig on first use. Table output is stored as JSON.
func NewConfigMapWriter(format Format, namespace, name string, c kubernetes.Interface) *ConfigMapWriter {
	if format != FormatYAML {
		format = FormatJSON
	}
	return &ConfigMapWriter{
		format:    format,
		namespace: namespace,
		name:      name,
		client:    c,
	}
}

// Serialize encodes data and writes it to the ConfigMap.
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	var buf bytes.Buffer
	if err := NewWriter(w.format, &buf).Serialize(ctx, data); err != nil {
		return err
	}

	if w.client == nil {
		c, err := kubeClient(w.kubeconfig)
		if err != nil {
			return fmt.Errorf("failed to create kubernetes client: %w", err)
		}
		w.client = c
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.KubernetesAPITimeout)
	defer cancel()

	cms := w.client.CoreV1().ConfigMaps(w.namespace)
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      w.name,
			Namespace: w.namespace,
			Labels:    map[string]string{managedByLabel: "clint"},
		},
		Data: map[string]string{DataKey(w.format): buf.String()},
	}

	_, err := cms.Create(ctx, cm, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	existing, err := cms.Get(ctx, w.name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	existing.Data = cm.Data
	if existing.Labels == nil {
		existing.Labels = map[string]string{}
	}
	existing.Labels[managedByLabel] = "clint"
	if _, err := cms.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// readConfigMap returns the stored document and its format.
func readConfigMap(ctx context.Context, c kubernetes.Interface, namespace, name string) ([]byte, Format, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.KubernetesAPITimeout)
	defer cancel()

	cm, err := c.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}
	for _, f := range []Format{FormatJSON, FormatYAML} {
		if data, ok := cm.Data[DataKey(f)]; ok {
			return []byte(data), f, nil
		}
	}
	return nil, "", fmt.Errorf("ConfigMap %s/%s has no %s or %s key", namespace, name, DataKey(FormatJSON), DataKey(FormatYAML))
}
