package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EncodeDocument walks a document in place and converts string values into
// their BSON-native types: properties named in idProps become ObjectIDs and
// properties named in dateProps become time.Time values. Nested maps and
// slices are traversed; values that fail to parse are left untouched.
func EncodeDocument(doc map[string]any, idProps, dateProps []string) {
	ids := toSet(idProps)
	dates := toSet(dateProps)
	encodeMap(doc, ids, dates)
}

func encodeMap(m map[string]any, ids, dates map[string]bool) {
	for key, value := range m {
		switch v := value.(type) {
		case string:
			if ids[key] {
				if oid, err := primitive.ObjectIDFromHex(v); err == nil {
					m[key] = oid
				}
			} else if dates[key] {
				if t, ok := parseTime(v); ok {
					m[key] = t
				}
			}
		case map[string]any:
			encodeMap(v, ids, dates)
		case []any:
			encodeSlice(key, v, ids, dates)
		}
	}
}

func encodeSlice(key string, s []any, ids, dates map[string]bool) {
	for i, value := range s {
		switch v := value.(type) {
		case string:
			// Elements of a list inherit the list's property name.
			if ids[key] {
				if oid, err := primitive.ObjectIDFromHex(v); err == nil {
					s[i] = oid
				}
			} else if dates[key] {
				if t, ok := parseTime(v); ok {
					s[i] = t
				}
			}
		case map[string]any:
			encodeMap(v, ids, dates)
		case []any:
			encodeSlice(key, v, ids, dates)
		}
	}
}

// parseTime accepts RFC 3339 with or without sub-second precision.
func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
