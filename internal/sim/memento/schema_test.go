package memento_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"geocoin.app/internal/sim/memento"
)

func TestHistoryExportMatchesSchema(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "..", "schemas", "snapshot.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	h := memento.NewHistory()
	h.Save(nil)
	h.Save([]memento.CacheState{
		{ID: "369894,-1220628", CoinCount: 3, Lat: 36.98945, Lng: -122.06275, Coins: []memento.CoinState{
			{I: 369894, J: -1220628, Serial: 0},
			{I: 369894, J: -1220628, Serial: 1},
			{I: 369893, J: -1220628, Serial: 4},
		}},
		{ID: "1,1", CoinCount: 0, Lat: 0.00015, Lng: 0.00015},
	})

	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := schema.Validate(doc); err != nil {
		t.Fatalf("validate: %v\n%s", err, b)
	}
}

func TestSchemaRejectsMissingCoinCount(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "..", "schemas", "snapshot.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	var doc any
	_ = json.Unmarshal([]byte(`[{"index":0,"taken_at":"2026-01-02T03:04:05Z","caches":[{"id":"0,0","lat":0,"lng":0}]}]`), &doc)
	if err := schema.Validate(doc); err == nil {
		t.Fatalf("expected validation error")
	}
}
