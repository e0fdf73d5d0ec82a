package annotator

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/confsum/fingerprint"
)

// DefaultPrefix is the annotation prefix used when none is
// given.
const DefaultPrefix = "confsum.io"

// Annotate reads multi-document YAML from in, adds a
// fingerprint annotation for every data key of each
// ConfigMap and writes the documents to out separated by
// "---". Objects without kind or metadata.name are
// rejected.
func Annotate(
	in io.Reader,
	out io.Writer,
	prefix string,
) error {
	const errCtx = "annotating configmaps"

	if prefix == "" {
		prefix = DefaultPrefix
	}

	decoder := yaml.NewDecoder(in)
	firstObj := true

	for {
		var obj map[string]interface{}

		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf(
				"%s: decoding yaml: %w",
				errCtx, err,
			)
		}

		if obj == nil {
			continue
		}

		name := extractName(obj)
		if name == "" {
			return fmt.Errorf(
				"%s: missing metadata.name in object %v",
				errCtx, obj,
			)
		}

		kind := extractKind(obj)
		if kind == "" {
			return fmt.Errorf(
				"%s: missing kind in object %v",
				errCtx, obj,
			)
		}

		if kind == "ConfigMap" {
			if err := annotateConfigMap(obj, prefix); err != nil {
				return fmt.Errorf(
					"%s: configmap %s: %w",
					errCtx, name, err,
				)
			}
		}

		buf, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf(
				"%s: marshaling object: %w",
				errCtx, err,
			)
		}

		if firstObj {
			firstObj = false
		} else {
			if _, err := out.Write(
				[]byte("---\n"),
			); err != nil {
				return fmt.Errorf(
					"%s: writing separator: %w",
					errCtx, err,
				)
			}
		}

		if _, err := out.Write(buf); err != nil {
			return fmt.Errorf(
				"%s: writing output: %w",
				errCtx, err,
			)
		}
	}

	return nil
}

// Fingerprints returns the fingerprint of every string
// value in data keyed by its data key.
func Fingerprints(
	data map[string]interface{},
) (map[string]string, error) {
	fps := make(map[string]string, len(data))

	for key, val := range data {
		text, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf(
				"data key %s is not a string", key,
			)
		}

		fps[key] = fingerprint.Fingerprint(text)
	}

	return fps, nil
}

// annotateConfigMap sets one annotation per data key. A
// ConfigMap without data is left untouched.
func annotateConfigMap(
	obj map[string]interface{},
	prefix string,
) error {
	data, ok := obj["data"].(map[string]interface{})
	if !ok || len(data) == 0 {
		return nil
	}

	fps, err := Fingerprints(data)
	if err != nil {
		return err
	}

	// extractName already proved metadata is a map.
	metadata := obj["metadata"].(map[string]interface{}) //nolint:forcetypeassert // checked by caller

	annotations, ok := metadata["annotations"].(map[string]interface{})
	if !ok {
		annotations = make(map[string]interface{}, len(fps))
	}

	for key, fp := range fps {
		annotations[prefix+"/"+key] = fp
	}

	metadata["annotations"] = annotations

	return nil
}

// decodeAllDocs decodes all YAML documents from raw
// bytes into a slice of maps.
func decodeAllDocs(
	raw []byte,
) ([]map[string]interface{}, error) {
	const errCtx = "decoding all docs"

	decoder := yaml.NewDecoder(bytes.NewReader(raw))

	var docs []map[string]interface{}

	for {
		var doc map[string]interface{}

		err := decoder.Decode(&doc)
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if doc == nil {
			continue
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// extractName retrieves metadata.name from a YAML object
// represented as a nested map.
func extractName(
	obj map[string]interface{},
) string {
	metadata, ok := obj["metadata"].(map[string]interface{})
	if !ok {
		return ""
	}

	name, ok := metadata["name"].(string)
	if !ok {
		return ""
	}

	return name
}

// extractKind retrieves the kind field from a YAML object.
func extractKind(
	obj map[string]interface{},
) string {
	kind, ok := obj["kind"].(string)
	if !ok {
		return ""
	}

	return kind
}
