package todo

import (
	"strconv"
)

// Record is a persisted task. CompletedAt is unix milliseconds and is nil
// whenever Completed is false.
type Record struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *int64
	OwnerID     string
	CreatedAt   int64
}

// Changes is the fully resolved mutation applied by UpdateByOwner. Completion
// fields are always written; Text only when non-nil.
type Changes struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func encodeMillis(ms *int64) string {
	if ms == nil {
		return ""
	}
	return strconv.FormatInt(*ms, 10)
}

func recordFromHash(id string, fields map[string]string) (*Record, bool) {
	if len(fields) == 0 {
		return nil, false
	}

	rec := &Record{
		ID:        id,
		Text:      fields["text"],
		Completed: fields["completed"] == "1",
		OwnerID:   fields["owner"],
	}
	if raw := fields["completed_at"]; raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			rec.CompletedAt = &ms
		}
	}
	if !rec.Completed {
		rec.CompletedAt = nil
	}
	if ms, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		rec.CreatedAt = ms
	}
	return rec, true
}

// recordFromReply decodes the flat HGETALL array returned by the Lua scripts.
func recordFromReply(id string, reply interface{}) (*Record, bool) {
	items, ok := reply.([]interface{})
	if !ok || len(items)%2 != 0 {
		return nil, false
	}
	fields := make(map[string]string, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		k, _ := items[i].(string)
		v, _ := items[i+1].(string)
		fields[k] = v
	}
	return recordFromHash(id, fields)
}
