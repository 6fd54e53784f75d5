package hit

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

func TestBuckets_AppendPreservesOrder(t *testing.T) {
	b := NewBuckets()
	b.Append(domain.Dataset, Raw{ID: "d2"})
	b.Append(domain.Dataset, Raw{ID: "d1"})
	b.Append(domain.Experiment, Raw{ID: "e1"})

	ds := b.Of(domain.Dataset)
	if len(ds) != 2 || ds[0].ID != "d2" || ds[1].ID != "d1" {
		t.Errorf("unexpected datasets: %+v", ds)
	}
	if b.Len() != 3 {
		t.Errorf("expected 3 hits, got %d", b.Len())
	}
}

func TestBuckets_MarshalAlwaysHasThreeArrays(t *testing.T) {
	for name, b := range map[string]Buckets{
		"zero value": {},
		"new":        NewBuckets(),
	} {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != `{"datafiles":[],"datasets":[],"experiments":[]}` {
				t.Errorf("unexpected JSON: %s", data)
			}
		})
	}
}

func TestBuckets_MarshalHitShape(t *testing.T) {
	b := NewBuckets()
	b.Append(domain.Experiment, Raw{
		Index: "experiments", ID: "1", Score: 2.5,
		Fields: map[string]string{"title": "cryo"},
	})

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string][]map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	h := decoded["experiments"][0]
	if h["_index"] != "experiments" || h["_id"] != "1" || h["_score"] != 2.5 {
		t.Errorf("unexpected hit: %v", h)
	}
	src, ok := h["_source"].(map[string]any)
	if !ok || src["title"] != "cryo" {
		t.Errorf("unexpected _source: %v", h["_source"])
	}
}

func TestBuckets_SetNilBecomesEmpty(t *testing.T) {
	b := NewBuckets()
	b.Set(domain.Datafile, nil)
	if b.Datafiles == nil {
		t.Error("Set(nil) must leave an empty, non-nil bucket")
	}
}
