package extract

import (
	"strconv"
	"strings"

	"github.com/lexatlas/regscan/internal/model"
)

// probeResponse is the decoded shape of a date-probe reply. Fields are
// coerced leniently because the model does not always honor types.
type probeResponse struct {
	Date        string
	Specificity int
	SameLaw     bool
	Confidence  float64
}

func decodeProbe(v any) (probeResponse, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return probeResponse{}, false
	}
	return probeResponse{
		Date:        strings.TrimSpace(asString(obj["date"])),
		Specificity: asInt(obj["specificity"]),
		SameLaw:     asBool(obj["same_law"]),
		Confidence:  asFloat(obj["confidence"]),
	}, true
}

// decodeUpdate converts a state-update reply into a FieldUpdate,
// keeping only the known categorical fields and their trimmed,
// non-empty string values.
func decodeUpdate(v any) (model.FieldUpdate, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	upd := make(model.FieldUpdate, len(model.FieldKeys))
	for _, key := range model.FieldKeys {
		raw, ok := obj[key].([]any)
		if !ok {
			continue
		}
		vals := make([]string, 0, len(raw))
		for _, item := range raw {
			if s := strings.TrimSpace(asString(item)); s != "" {
				vals = append(vals, s)
			}
		}
		if len(vals) > 0 {
			upd[key] = vals
		}
	}
	return upd, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(x, "true")
	default:
		return false
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		n, _ := strconv.Atoi(x)
		return n
	default:
		return 0
	}
}
