package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/placement"
)

// Request asks for Count events chosen by Selector, placed with Strategy.
// Selector is a template id, "category:id" or a category name.
type Request struct {
	Selector string
	Count    int
	Strategy placement.Strategy
	Params   ir.IRObject
}

// Validate checks the request on its own. index is used in the error.
func (r Request) Validate(index int) error {
	if r.Selector == "" {
		return NewInvalidRequestError(index, "selector is required")
	}
	if r.Count < 0 {
		return NewInvalidRequestError(index, fmt.Sprintf("count must be >= 0, got %d", r.Count))
	}
	if _, err := placement.ParseStrategy(string(r.Strategy)); err != nil {
		return NewInvalidRequestError(index, err.Error())
	}
	return nil
}

// Object returns the request as an IRObject for storage and hashing.
func (r Request) Object() ir.IRObject {
	params := r.Params
	if params == nil {
		params = ir.IRObject{}
	}
	strategy := r.Strategy
	if strategy == "" {
		strategy = placement.Random
	}
	return ir.IRObject{
		"selector": ir.IRString(r.Selector),
		"count":    ir.IRInt(r.Count),
		"strategy": ir.IRString(strategy),
		"params":   params,
	}
}

// RequestsArray converts a batch to an IRArray, preserving order.
func RequestsArray(reqs []Request) ir.IRArray {
	arr := make(ir.IRArray, len(reqs))
	for i, r := range reqs {
		arr[i] = r.Object()
	}
	return arr
}

// EncodeRequests returns the canonical JSON form of a batch. The result is
// also valid input for ParseRequests.
func EncodeRequests(reqs []Request) ([]byte, error) {
	return ir.MarshalCanonical(RequestsArray(reqs))
}

type requestDoc struct {
	Selector string         `yaml:"selector"`
	Count    *int           `yaml:"count"`
	Strategy string         `yaml:"strategy"`
	Params   map[string]any `yaml:"params"`
}

type requestFile struct {
	Requests []requestDoc `yaml:"requests"`
}

// LoadRequests reads a request batch from a YAML file.
func LoadRequests(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading requests: %w", err)
	}
	reqs, err := ParseRequests(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// ParseRequests decodes a request batch. The document is either a list of
// requests or a mapping with a "requests" list. Count defaults to 1 and
// strategy to random.
func ParseRequests(data []byte) ([]Request, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing requests: %w", err)
	}

	if len(root.Content) == 0 {
		return []Request{}, nil
	}

	var docs []requestDoc
	if root.Content[0].Kind == yaml.SequenceNode {
		if err := root.Content[0].Decode(&docs); err != nil {
			return nil, fmt.Errorf("parsing requests: %w", err)
		}
	} else {
		var f requestFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing requests: %w", err)
		}
		docs = f.Requests
	}

	reqs := make([]Request, len(docs))
	for i, d := range docs {
		req, err := d.request()
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		if err := req.Validate(i); err != nil {
			return nil, err
		}
		reqs[i] = req
	}
	return reqs, nil
}

func (d requestDoc) request() (Request, error) {
	strategy, err := placement.ParseStrategy(d.Strategy)
	if err != nil {
		return Request{}, err
	}
	req := Request{Selector: d.Selector, Count: 1, Strategy: strategy}
	if d.Count != nil {
		req.Count = *d.Count
	}
	if d.Params != nil {
		v, err := ir.FromAny(d.Params)
		if err != nil {
			return Request{}, fmt.Errorf("params: %w", err)
		}
		req.Params = v.(ir.IRObject)
	}
	return req, nil
}
