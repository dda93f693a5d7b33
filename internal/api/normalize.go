package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/existflow/kawai/internal/model"
)

// extractList returns the items of a list response. It accepts a bare array,
// {"data": [...]}, {"data": {"<plural>": [...]}} and {"<plural>": [...]}.
// A body whose status field signals an error is rejected.
func extractList(body []byte, plurals ...string) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return items, nil
	case '{':
	default:
		return nil, fmt.Errorf("%w: not JSON array or object", ErrUnexpectedShape)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if err := backendError(obj); err != nil {
		return nil, err
	}

	if data, ok := obj["data"]; ok {
		if items, err := extractList(data, plurals...); err == nil {
			return items, nil
		}
	}
	for _, p := range plurals {
		if raw, ok := obj[p]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err == nil {
				return items, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no list under data or %s", ErrUnexpectedShape, strings.Join(plurals, "/"))
}

// extractObject unwraps the first of keys holding an object, or returns the
// body itself.
func extractObject(body []byte, keys ...string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if err := backendError(obj); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if raw, ok := obj[k]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			return raw, nil
		}
	}
	return bytes.TrimSpace(body), nil
}

func backendError(obj map[string]json.RawMessage) error {
	raw, ok := obj["status"]
	if !ok {
		if e, ok := obj["error"]; ok {
			var msg string
			if json.Unmarshal(e, &msg) == nil && msg != "" {
				return fmt.Errorf("backend error: %s", msg)
			}
		}
		return nil
	}
	var status any
	_ = json.Unmarshal(raw, &status)
	if signalsError(map[string]any{"status": status}) {
		return fmt.Errorf("backend error status %s", raw)
	}
	return nil
}

// doc is one decoded item. Extended JSON wrappers are resolved when the item
// parses as relaxed extended JSON; otherwise it is plain JSON.
type doc map[string]any

func decodeDoc(raw json.RawMessage) (doc, error) {
	var m bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &m); err == nil {
		return doc(m), nil
	}
	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return doc(plain), nil
}

// id returns the first non-empty of _id, id and the given fallbacks.
func (d doc) id(fallbacks ...string) string {
	for _, key := range append([]string{"_id", "id"}, fallbacks...) {
		if s := idString(d[key]); s != "" {
			return s
		}
	}
	return ""
}

func idString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		if x.IsZero() {
			return ""
		}
		return x.Hex()
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	if oid, ok := lookup(v, "$oid"); ok {
		return idString(oid)
	}
	return ""
}

// lookup reads key from any nested document representation.
func lookup(v any, key string) (any, bool) {
	switch x := v.(type) {
	case map[string]any:
		val, ok := x[key]
		return val, ok
	case primitive.M:
		val, ok := x[key]
		return val, ok
	case primitive.D:
		for _, e := range x {
			if e.Key == key {
				return e.Value, true
			}
		}
	}
	return nil, false
}

func (d doc) str(keys ...string) string {
	for _, key := range keys {
		switch v := d[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case primitive.ObjectID:
			return v.Hex()
		case float64, int32, int64:
			return idString(v)
		}
	}
	return ""
}

func (d doc) boolean(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (d doc) integer(key string) int {
	switch v := d[key].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (d doc) time(key string) time.Time {
	return toTime(d[key])
}

func toTime(v any) time.Time {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time()
	case time.Time:
		return x
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t
			}
		}
	case float64:
		return time.UnixMilli(int64(x))
	case int64:
		return time.UnixMilli(x)
	}
	if inner, ok := lookup(v, "$date"); ok {
		return toTime(inner)
	}
	if n, ok := lookup(v, "$numberLong"); ok {
		if s, ok := n.(string); ok {
			if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
				return time.UnixMilli(ms)
			}
		}
	}
	return time.Time{}
}

func noteFromDoc(d doc) model.Note {
	return model.Note{
		ID:        d.id("note_id"),
		UserPhone: d.str("user_phone"),
		Original:  d.str("original"),
		Content:   d.str("content"),
		Type:      d.str("type"),
		CreatedAt: d.time("created_at"),
	}
}

func reminderFromDoc(d doc) model.Reminder {
	return model.Reminder{
		ID:            d.id("reminder_id"),
		UserPhone:     d.str("user_phone"),
		Title:         d.str("title", "message"),
		ScheduledTime: d.time("scheduled_time"),
		Status:        d.str("status"),
		CreatedAt:     d.time("created_at"),
	}
}

func userFromDoc(d doc) model.User {
	return model.User{
		ID:          d.id("user_id"),
		Name:        d.str("name", "username"),
		PhoneNumber: d.str("phone_number", "phone"),
		Role:        d.str("role"),
		IsBanned:    d.boolean("is_banned"),
		Status:      d.str("status"),
		CreatedAt:   d.time("created_at"),
	}
}

func chatFromDoc(d doc) model.ChatMessage {
	return model.ChatMessage{
		ID:         d.id("message_id"),
		From:       d.str("from", "sender"),
		Message:    d.str("message", "text"),
		ReceivedAt: d.time("received_at"),
	}
}

// decodeAll decodes every item with conv, skipping items that are not objects.
func decodeAll[T any](items []json.RawMessage, conv func(doc) T) []T {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		d, err := decodeDoc(raw)
		if err != nil {
			continue
		}
		out = append(out, conv(d))
	}
	return out
}
