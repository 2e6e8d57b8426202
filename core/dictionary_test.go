package core

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func TestDictionary(t *testing.T) {
	registry := NewCommandRegistry()
	registry.RegisterResponse("identify_response", "offset=%u data=%*s")
	registry.Register("identify", "offset=%u count=%c", func(data *[]byte) error { return nil })

	dict := NewDictionary(registry, "picoclock-test")
	dict.AddConstant("ALARM_SLOTS", 9)
	dict.AddConstant("MCU", "rp2040")
	dict.AddEnumeration("button", []string{"mode", "up", "down"})

	output := dict.Generate()

	var parsed struct {
		Version      string                    `json:"version"`
		Config       map[string]string         `json:"config"`
		Commands     map[string]int            `json:"commands"`
		Responses    map[string]int            `json:"responses"`
		Enumerations map[string]map[string]int `json:"enumerations"`
	}
	if err := json.Unmarshal(output, &parsed); err != nil {
		t.Fatalf("Dictionary is not valid JSON: %v\n%s", err, output)
	}

	if parsed.Version != "picoclock-test" {
		t.Errorf("Expected version picoclock-test, got %q", parsed.Version)
	}
	if parsed.Config["ALARM_SLOTS"] != "9" {
		t.Errorf("Expected ALARM_SLOTS 9, got %q", parsed.Config["ALARM_SLOTS"])
	}
	if parsed.Commands["identify offset=%u count=%c"] != 1 {
		t.Errorf("Expected identify ID 1, got %v", parsed.Commands)
	}
	if _, ok := parsed.Responses["identify_response offset=%u data=%*s"]; !ok {
		t.Errorf("Missing identify_response in %v", parsed.Responses)
	}
	if parsed.Enumerations["button"]["down"] != 2 {
		t.Errorf("Expected button down = 2, got %v", parsed.Enumerations["button"])
	}
}

func TestDictionaryChunks(t *testing.T) {
	registry := NewCommandRegistry()
	registry.Register("get_time", "", func(data *[]byte) error { return nil })
	dict := NewDictionary(registry, "v")
	dict.Build()

	full := dict.Framed()
	var rebuilt []byte
	for offset := uint32(0); ; {
		chunk := dict.GetChunk(offset, 16)
		if len(chunk) == 0 {
			break
		}
		rebuilt = append(rebuilt, chunk...)
		offset += uint32(len(chunk))
	}

	if string(rebuilt) != string(full) {
		t.Errorf("Chunks do not reassemble the dictionary:\n%s\n%s", rebuilt, full)
	}
	if len(dict.GetChunk(uint32(len(full))+5, 16)) != 0 {
		t.Error("Expected empty chunk past the end")
	}
}

func TestDictionaryQuotesStrings(t *testing.T) {
	dict := NewDictionary(NewCommandRegistry(), `a"b`)
	if !strings.Contains(string(dict.Generate()), `"a\"b"`) {
		t.Errorf("Version not escaped: %s", dict.Generate())
	}
}

func TestDictionaryFramedInflates(t *testing.T) {
	registry := NewCommandRegistry()
	registry.Register("get_time", "", func(data *[]byte) error { return nil })
	dict := NewDictionary(registry, "v")
	dict.AddConstant("MCU", "rp2040")

	r, err := zlib.NewReader(bytes.NewReader(dict.Framed()))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(out) != string(dict.Generate()) {
		t.Errorf("Framed dictionary does not inflate to the JSON:\n%s", out)
	}
}
