package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/scenesmith/internal/ir"
)

// marshalInstance converts an instance to canonical JSON TEXT and returns
// it with its content hash.
func marshalInstance(inst ir.Instance) (record string, hash string, err error) {
	data, err := ir.MarshalCanonical(inst.Object())
	if err != nil {
		return "", "", fmt.Errorf("marshal instance %d: %w", inst.ID, err)
	}
	hash, err = ir.InstanceHash(inst)
	if err != nil {
		return "", "", fmt.Errorf("hash instance %d: %w", inst.ID, err)
	}
	return string(data), hash, nil
}

// unmarshalInstance parses a stored record. IR values decode through
// json.Number, so large integers keep their precision.
func unmarshalInstance(record string) (ir.Instance, error) {
	var inst ir.Instance
	if err := json.Unmarshal([]byte(record), &inst); err != nil {
		return ir.Instance{}, fmt.Errorf("unmarshal instance: %w", err)
	}
	return inst, nil
}

// templateKey extracts "category:id" from the instance note written by the
// factory. Instances without a template note give "".
func templateKey(inst ir.Instance) string {
	key, ok := strings.CutPrefix(inst.Note, "<template:")
	if !ok || !strings.HasSuffix(key, ">") {
		return ""
	}
	return strings.TrimSuffix(key, ">")
}
