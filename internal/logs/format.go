package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format renders one JSON log line as "time LEVEL [component] message k=v".
// Lines that are not JSON objects are returned unchanged.
func Format(line string) string {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil || record == nil {
		return line
	}

	ts := str(record["time"])
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		ts = parsed.Local().Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(str(record["level"]))
	msg := str(record["msg"])
	component := str(record["component"])
	for _, key := range []string{"time", "level", "msg", "component", "source"} {
		delete(record, key)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s", ts, level)
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := str(record[k])
		if strings.ContainsAny(value, " \t\"") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %s=%s", k, value)
	}
	return b.String()
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}
