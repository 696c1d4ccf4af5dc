package domain

import (
	"encoding/json"
	"sort"
)

type ReactionAction string

const (
	ActionToggleFavorite ReactionAction = "toggle_favorite"
	ActionLike           ReactionAction = "like"
	ActionDislike        ReactionAction = "dislike"
)

// UserData is the server-owned per-user record. Its shape belongs to the
// backend, so fields are kept as raw JSON.
type UserData map[string]json.RawMessage

func (d UserData) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// StringList decodes key as a list of strings, accepting numbers too.
func (d UserData) StringList(key string) []string {
	raw, ok := d[key]
	if !ok {
		return nil
	}

	var values []json.Number
	if err := json.Unmarshal(raw, &values); err == nil {
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, v.String())
		}
		return out
	}

	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil
	}
	return strs
}
