package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSession(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, DebugLevel)

	log.ForSession("ABC234", "host", "c1").Info().Msg("hi")
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatal(err)
	}
	if line[CodeField] != "ABC234" || line[RoleField] != "host" || line[ConnField] != "c1" || line["message"] != "hi" {
		t.Errorf("unexpected line %v", line)
	}

	buf.Reset()
	log.ForSession("ABC234", "", "").Debug().Msg("no role")
	line = nil
	_ = json.Unmarshal(buf.Bytes(), &line)
	if _, ok := line[RoleField]; ok {
		t.Errorf("empty role is logged: %v", line)
	}
}

func TestLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, WarnLevel)
	if log.GetLevel() != WarnLevel {
		t.Errorf("expected warn, got %v", log.GetLevel())
	}
	log.Info().Msg("skip")
	if buf.Len() != 0 {
		t.Errorf("info went through a warn logger: %s", buf.String())
	}
	NewWriter(&buf, Disabled).Error().Msg("skip")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %s", buf.String())
	}
}
