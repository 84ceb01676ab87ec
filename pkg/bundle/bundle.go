// Package bundle exports several collections as one JSON document and
// restores them atomically.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/celerix-dev/celerix-records/pkg/entity"
	"go.uber.org/multierr"
)

// DateField is the metadata key recording when a document was exported.
const DateField = "exportDate"

// Collection is what the codec needs from a store.
type Collection interface {
	Name() string
	Snapshot() (json.RawMessage, error)
	Stage(raw json.RawMessage) (commit func() error, err error)
}

// Result summarizes an import.
type Result struct {
	Replaced map[string]int `json:"replaced"`
	Ignored  []string       `json:"ignored"`
}

// Export writes every collection under its name, plus an exportDate field,
// as pretty-printed UTF-8 JSON.
func Export(now time.Time, collections ...Collection) ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(collections)+1)
	date, err := json.Marshal(now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	doc[DateField] = date
	for _, c := range collections {
		if c.Name() == DateField {
			return nil, fmt.Errorf("bundle: collection name %q is reserved", DateField)
		}
		raw, err := c.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("bundle: export %s: %w", c.Name(), err)
		}
		doc[c.Name()] = raw
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import replaces every recognized collection with the arrays in doc.
//
// All recognized collections are decoded and validated before any of them is
// touched, so a malformed document changes nothing and yields one
// validation error. Unknown keys are ignored. Once every collection has been
// staged, all of them are replaced; persistence failures at that point are
// combined but the in-memory replacement stands.
func Import(doc []byte, collections ...Collection) (Result, error) {
	res := Result{Replaced: make(map[string]int)}

	var top map[string]json.RawMessage
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return res, entity.Validation("", "import document must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return res, entity.Validation("", "invalid JSON: %v", err)
	}

	known := make(map[string]Collection, len(collections))
	for _, c := range collections {
		known[c.Name()] = c
	}
	for key := range top {
		if _, ok := known[key]; !ok {
			res.Ignored = append(res.Ignored, key)
		}
	}
	sort.Strings(res.Ignored)

	type staged struct {
		name   string
		commit func() error
		count  int
	}
	var plan []staged
	for _, c := range collections {
		raw, ok := top[c.Name()]
		if !ok {
			continue
		}
		commit, err := c.Stage(raw)
		if err != nil {
			return res, err
		}
		plan = append(plan, staged{name: c.Name(), commit: commit, count: countArray(raw)})
	}

	var errs error
	for _, p := range plan {
		if err := p.commit(); err != nil {
			errs = multierr.Append(errs, err)
		}
		res.Replaced[p.name] = p.count
	}
	return res, errs
}

func countArray(raw json.RawMessage) int {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return 0
	}
	return len(elems)
}
