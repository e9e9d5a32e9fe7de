package k8sclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// ApplyManifests applies multi-document YAML using Server-Side Apply.
// Each document in the YAML is parsed and applied separately.
// Empty documents are skipped.
func (c *client) ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error {
	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifests), 4096)

	docIndex := 0
	for {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to decode manifest document %d: %w", docIndex, err)
		}

		// Skip empty documents (common in multi-doc YAML)
		if len(obj.Object) == 0 {
			docIndex++
			continue
		}

		if err := c.applyObject(ctx, &obj, fieldManager); err != nil {
			return fmt.Errorf("failed to apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}

		docIndex++
	}

	return nil
}

// applyObject applies a single unstructured object using Server-Side Apply.
func (c *client) applyObject(ctx context.Context, obj *unstructured.Unstructured, fieldManager string) error {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal object to JSON: %w", err)
	}

	opts := metav1.PatchOptions{
		FieldManager: fieldManager,
	}

	resource := c.dynamicClient.Resource(mapping.Resource)
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		namespace := obj.GetNamespace()
		if namespace == "" {
			namespace = "default"
		}
		_, err = resource.Namespace(namespace).Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts)
	} else {
		_, err = resource.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts)
	}

	if err != nil {
		return fmt.Errorf("server-side apply failed: %w", err)
	}

	return nil
}
