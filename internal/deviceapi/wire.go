package deviceapi

import (
	"strconv"
	"strings"
)

// Record is one device-side record decoded from the flat key=value response
// format: field name to raw string value.
type Record map[string]string

// ParseRecordList decodes a newline-delimited key=value response. Lines of
// the form records[<N>].<field>=<value> accumulate into the bucket for
// integer N; every other line (summary counters and the like) is ignored.
// Indices need not be contiguous or sorted; the result preserves the order
// in which each index first appeared.
func ParseRecordList(body string) []Record {
	lines := strings.Split(strings.TrimSpace(body), "\n")

	var order []int
	buckets := make(map[int]Record)

	for _, line := range lines {
		if !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")

		idx, field, ok := splitRecordKey(key)
		if !ok {
			continue
		}

		bucket, exists := buckets[idx]
		if !exists {
			bucket = make(Record)
			buckets[idx] = bucket
			order = append(order, idx)
		}
		bucket[field] = value
	}

	records := make([]Record, 0, len(order))
	for _, idx := range order {
		records = append(records, buckets[idx])
	}
	return records
}

// splitRecordKey parses keys shaped like records[<N>].<field>.
func splitRecordKey(key string) (idx int, field string, ok bool) {
	const prefix = "records["
	if !strings.HasPrefix(key, prefix) {
		return 0, "", false
	}
	rest := key[len(prefix):]

	close := strings.Index(rest, "].")
	if close < 0 {
		return 0, "", false
	}

	idx, err := strconv.Atoi(rest[:close])
	if err != nil {
		return 0, "", false
	}

	field = rest[close+2:]
	if field == "" {
		return 0, "", false
	}
	return idx, field, true
}
