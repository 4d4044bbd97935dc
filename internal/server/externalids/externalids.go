// Package externalids resolves the external-identifier representation stored
// in a contact's metadata. Two on-disk generations exist: the current map
// form ("external_ids": {source: id}) and the legacy pair of scalar fields
// ("external_id" + "source"). The resolution happens once, here, so storage
// and service code never branch on field presence.
package externalids

// Kind tags the resolved representation.
type Kind int

const (
	// None means the metadata carries no usable external identifiers.
	None Kind = iota
	// MapForm means metadata["external_ids"] held a source→id map.
	MapForm
	// LegacyForm means the scalar "external_id"/"source" pair was used.
	LegacyForm
)

// Resolution is the tagged result of resolving a metadata map. For both
// MapForm and LegacyForm the identifiers are normalized into IDs
// (source → external id); LegacyForm always yields exactly one entry.
type Resolution struct {
	Kind Kind
	IDs  map[string]string
}

// Resolve classifies the external-identifier fields of a contact's metadata.
// Malformed values (wrong types, empty strings, empty map) resolve to None;
// they are never an error, because a contact without importable identifiers
// is a normal case.
func Resolve(metadata map[string]any) Resolution {
	if len(metadata) == 0 {
		return Resolution{Kind: None}
	}

	if raw, ok := metadata["external_ids"]; ok {
		if ids := toStringMap(raw); len(ids) > 0 {
			return Resolution{Kind: MapForm, IDs: ids}
		}
	}

	externalID, okID := metadata["external_id"].(string)
	source, okSource := metadata["source"].(string)
	if okID && okSource && externalID != "" && source != "" {
		return Resolution{Kind: LegacyForm, IDs: map[string]string{source: externalID}}
	}

	return Resolution{Kind: None}
}

// toStringMap accepts both map[string]string and the map[string]any produced
// by encoding/json, dropping entries whose key or value is empty or not a
// string.
func toStringMap(raw any) map[string]string {
	switch m := raw.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for source, id := range m {
			if source != "" && id != "" {
				out[source] = id
			}
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(m))
		for source, v := range m {
			id, ok := v.(string)
			if ok && source != "" && id != "" {
				out[source] = id
			}
		}
		return out
	default:
		return nil
	}
}
