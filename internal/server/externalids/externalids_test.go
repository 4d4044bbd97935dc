package externalids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		wantKind Kind
		wantIDs  map[string]string
	}{
		{
			name: "map form",
			metadata: map[string]any{
				"external_ids": map[string]any{
					"google_contacts": "people/123",
					"gmail":           "gmail:test@example.com",
				},
			},
			wantKind: MapForm,
			wantIDs: map[string]string{
				"google_contacts": "people/123",
				"gmail":           "gmail:test@example.com",
			},
		},
		{
			name: "map form with typed map",
			metadata: map[string]any{
				"external_ids": map[string]string{"google_contacts": "people/5"},
			},
			wantKind: MapForm,
			wantIDs:  map[string]string{"google_contacts": "people/5"},
		},
		{
			name: "legacy form",
			metadata: map[string]any{
				"external_id": "legacy:123",
				"source":      "google_contacts",
			},
			wantKind: LegacyForm,
			wantIDs:  map[string]string{"google_contacts": "legacy:123"},
		},
		{
			name:     "nil metadata",
			metadata: nil,
			wantKind: None,
		},
		{
			name:     "no identifier fields",
			metadata: map[string]any{"notes": "met at a conference"},
			wantKind: None,
		},
		{
			name: "empty map falls back to legacy fields",
			metadata: map[string]any{
				"external_ids": map[string]any{},
				"external_id":  "legacy:9",
				"source":       "gmail",
			},
			wantKind: LegacyForm,
			wantIDs:  map[string]string{"gmail": "legacy:9"},
		},
		{
			name: "map with non-string values dropped",
			metadata: map[string]any{
				"external_ids": map[string]any{"gmail": 42, "google_contacts": "people/7"},
			},
			wantKind: MapForm,
			wantIDs:  map[string]string{"google_contacts": "people/7"},
		},
		{
			name: "legacy form missing source",
			metadata: map[string]any{
				"external_id": "legacy:123",
			},
			wantKind: None,
		},
		{
			name: "legacy form empty strings",
			metadata: map[string]any{
				"external_id": "",
				"source":      "gmail",
			},
			wantKind: None,
		},
		{
			name: "external_ids of wrong type",
			metadata: map[string]any{
				"external_ids": "people/123",
			},
			wantKind: None,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.metadata)
			assert.Equal(t, tc.wantKind, got.Kind)
			if tc.wantIDs != nil {
				assert.Equal(t, tc.wantIDs, got.IDs)
			} else {
				assert.Empty(t, got.IDs)
			}
		})
	}
}
