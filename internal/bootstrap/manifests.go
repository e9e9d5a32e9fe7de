package bootstrap

import (
	"bytes"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

// renderManifests encodes typed objects as a multi-document YAML stream.
// Every object must carry its TypeMeta.
func renderManifests(objects ...runtime.Object) ([]byte, error) {
	var buf bytes.Buffer
	for n, obj := range objects {
		if obj.GetObjectKind().GroupVersionKind().Kind == "" {
			return nil, fmt.Errorf("manifest %d has no kind", n)
		}
		data, err := yaml.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to render manifest %d: %w", n, err)
		}
		if n > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
