package core

import (
	"sort"
	"sync"

	"picoclock/tinycompress"
)

// Enumeration maps symbolic names to values in the dictionary
type Enumeration struct {
	Name   string
	Values []string
}

// Dictionary is the JSON document the host downloads with identify. It lists
// firmware constants, enumerations and every command and response with its
// ID so the host never hardcodes either. It is served zlib-framed.
type Dictionary struct {
	mu           sync.RWMutex
	constants    map[string]string
	enumerations map[string]*Enumeration
	commandReg   *CommandRegistry
	version      string
	cached       []byte
	framed       []byte
}

// NewDictionary creates a dictionary backed by the given registry
func NewDictionary(cmdReg *CommandRegistry, version string) *Dictionary {
	return &Dictionary{
		constants:    make(map[string]string),
		enumerations: make(map[string]*Enumeration),
		commandReg:   cmdReg,
		version:      version,
	}
}

// AddConstant adds a constant. Values are stored in their printed form.
func (d *Dictionary) AddConstant(name string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.constants[name] = valueToString(value)
	d.cached, d.framed = nil, nil
}

// AddEnumeration adds an enumeration; empty names are skipped on output
func (d *Dictionary) AddEnumeration(name string, values []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	valuesCopy := make([]string, len(values))
	copy(valuesCopy, values)
	d.enumerations[name] = &Enumeration{Name: name, Values: valuesCopy}
	d.cached, d.framed = nil, nil
}

// Build renders and caches the dictionary. Call after every command is
// registered.
func (d *Dictionary) Build() {
	// Fetch from the registry before taking our own lock so the two locks
	// are never nested.
	commands, responses := d.commandReg.GetCommandsAndResponses()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = d.render(commands, responses)
	d.framed = tinycompress.Encode(d.cached)
	DebugPrintln("[DICT] built " + itoa(len(d.cached)) + " bytes")
}

// Generate returns the dictionary JSON, building it if needed
func (d *Dictionary) Generate() []byte {
	d.mu.RLock()
	cached := d.cached
	d.mu.RUnlock()
	if cached != nil {
		return cached
	}
	d.Build()
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cached
}

// Framed returns the dictionary as a zlib stream, building it if needed
func (d *Dictionary) Framed() []byte {
	d.mu.RLock()
	framed := d.framed
	d.mu.RUnlock()
	if framed != nil {
		return framed
	}
	d.Build()
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.framed
}

// GetChunk returns a copy of at most count bytes of the framed dictionary
// starting at offset
func (d *Dictionary) GetChunk(offset uint32, count uint8) []byte {
	data := d.Framed()
	if offset >= uint32(len(data)) {
		return []byte{}
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	chunk := make([]byte, end-offset)
	copy(chunk, data[offset:end])
	return chunk
}

// render writes the JSON by hand with keys in a fixed order, so chunk
// offsets stay valid between identify requests.
func (d *Dictionary) render(commands, responses map[string]int) []byte {
	out := make([]byte, 0, 1024)

	out = append(out, `{"version":`...)
	out = appendQuoted(out, d.version)

	out = append(out, `,"config":{`...)
	names := make([]string, 0, len(d.constants))
	for name := range d.constants {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendQuoted(out, name)
		out = append(out, ':')
		out = appendQuoted(out, d.constants[name])
	}

	out = append(out, `},"commands":`...)
	out = appendIDMap(out, commands)
	out = append(out, `,"responses":`...)
	out = appendIDMap(out, responses)

	if len(d.enumerations) > 0 {
		out = append(out, `,"enumerations":{`...)
		enumNames := make([]string, 0, len(d.enumerations))
		for name := range d.enumerations {
			enumNames = append(enumNames, name)
		}
		sort.Strings(enumNames)
		for i, name := range enumNames {
			if i > 0 {
				out = append(out, ',')
			}
			out = appendQuoted(out, name)
			out = append(out, ":{"...)
			first := true
			for v, value := range d.enumerations[name].Values {
				if value == "" {
					continue
				}
				if !first {
					out = append(out, ',')
				}
				out = appendQuoted(out, value)
				out = append(out, ':')
				out = append(out, itoa(v)...)
				first = false
			}
			out = append(out, '}')
		}
		out = append(out, '}')
	}

	return append(out, '}')
}

// appendIDMap writes a {"format":id,...} object ordered by id
func appendIDMap(out []byte, m map[string]int) []byte {
	type entry struct {
		format string
		id     int
	}
	entries := make([]entry, 0, len(m))
	for format, id := range m {
		entries = append(entries, entry{format, id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	out = append(out, '{')
	for i, e := range entries {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendQuoted(out, e.format)
		out = append(out, ':')
		out = append(out, itoa(e.id)...)
	}
	return append(out, '}')
}

func appendQuoted(out []byte, s string) []byte {
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	return append(out, '"')
}

// valueToString converts the constant types the firmware uses to text
func valueToString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return itoa(val)
	case uint8:
		return utoa(uint32(val))
	case uint16:
		return utoa(uint32(val))
	case uint32:
		return utoa(val)
	case int32:
		return itoa(int(val))
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}
