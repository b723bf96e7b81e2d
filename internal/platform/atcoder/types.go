package atcoder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// submissionPayload mirrors one entry of the kenkoooo results feed.
type submissionPayload struct {
	ID          int64   `json:"id"`
	EpochSecond int64   `json:"epoch_second"`
	ProblemID   string  `json:"problem_id"`
	ContestID   string  `json:"contest_id"`
	UserID      string  `json:"user_id"`
	Result      string  `json:"result"`
	Point       float64 `json:"point"`
}

// problemPayload mirrors one entry of the problems catalog. Some dumps use
// "id"/"title", others "problem_id"/"name".
type problemPayload struct {
	ID        string `json:"id"`
	ProblemID string `json:"problem_id"`
	ContestID string `json:"contest_id"`
	Title     string `json:"title"`
	Name      string `json:"name"`
}

func (p problemPayload) problemID() string {
	if p.ID != "" {
		return p.ID
	}
	return p.ProblemID
}

func (p problemPayload) title() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

type modelPayload struct {
	ProblemID  string   `json:"problem_id"`
	Difficulty *float64 `json:"difficulty"`
}

type ratingHistoryEntry struct {
	NewRating int `json:"NewRating"`
}

// decodeModels normalizes the several shapes the problem-models endpoint has
// shipped over time into one map before any caller sees the data:
//
//   - a bare list of model objects,
//   - {"models": [...]} or {"data": [...]},
//   - a map of problem id to model object or to a bare difficulty number.
//
// Anything else is a decode error, not a deep runtime branch.
func decodeModels(raw json.RawMessage) (map[string]*float64, error) {
	out := map[string]*float64{}

	var list []modelPayload
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, m := range list {
			if m.ProblemID == "" {
				continue
			}
			out[m.ProblemID] = m.Difficulty
		}
		return out, nil
	}

	var wrapped struct {
		Models json.RawMessage `json:"models"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if wrapped.Models != nil {
			return decodeModels(wrapped.Models)
		}
		if wrapped.Data != nil {
			return decodeModels(wrapped.Data)
		}
	}

	var byID map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byID); err == nil && len(byID) > 0 {
		for pid, entry := range byID {
			// json.Unmarshal treats null as a no-op, so catch it before the
			// numeric attempt reads it as 0.
			if string(bytes.TrimSpace(entry)) == "null" {
				out[pid] = nil
				continue
			}
			var obj modelPayload
			if err := json.Unmarshal(entry, &obj); err == nil && (obj.Difficulty != nil || obj.ProblemID != "") {
				out[pid] = obj.Difficulty
				continue
			}
			var num float64
			if err := json.Unmarshal(entry, &num); err == nil {
				v := num
				out[pid] = &v
				continue
			}
			// null or an empty object: a known problem without a model
			out[pid] = nil
		}
		return out, nil
	}

	return nil, fmt.Errorf("unexpected problem models payload shape")
}
