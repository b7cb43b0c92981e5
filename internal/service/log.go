package service

import (
	"encoding/json"
	"log"
	"time"
)

// logEvent emits one JSON log line. Used for the deliberately swallowed
// failure paths (compensating blob delete, lenient tag parse) that must be
// visible in logs without failing the request.
func logEvent(level, event string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"event": event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
