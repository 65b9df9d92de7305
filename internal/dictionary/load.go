package dictionary

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"bdintel-engine/internal/domain"
)

// programEntry mirrors the JSON dictionary contract:
// { "GBSD": {"full_name": ..., "acronyms": [...], ...}, ... }
type programEntry struct {
	FullName        string   `json:"full_name"`
	Acronyms        []string `json:"acronyms"`
	CodeNames       []string `json:"code_names"`
	PrimeContractor string   `json:"prime_contractor"`
	ContractValue   string   `json:"contract_value"`
	ClearanceLevels []string `json:"clearance_levels"`
	Locations       []string `json:"locations"`
	KeySkills       []string `json:"key_skills"`
}

// Load reads a program dictionary JSON file. Any malformed entry, duplicate
// program code or cross-program alias collision fails the whole load with a
// ConfigError; no partial dictionary is ever returned.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and indexes a dictionary. Decoding walks the JSON token
// stream so duplicate program codes are caught (map decoding would silently
// keep the last one).
func Parse(r io.Reader) (*Dictionary, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, configErrorf("decode: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, configErrorf("top level must be an object keyed by program code")
	}

	programs := map[string]domain.ProgramDefinition{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, configErrorf("decode: %v", err)
		}
		code := strings.TrimSpace(keyTok.(string))
		if code == "" {
			return nil, configErrorf("empty program code")
		}
		if _, dup := programs[code]; dup {
			return nil, configErrorf("duplicate program code %q", code)
		}

		var e programEntry
		if err := dec.Decode(&e); err != nil {
			return nil, configErrorf("program %s: %v", code, err)
		}
		if strings.TrimSpace(e.FullName) == "" {
			return nil, configErrorf("program %s: full_name is required", code)
		}

		programs[code] = domain.ProgramDefinition{
			ProgramCode:     code,
			FullName:        e.FullName,
			Aliases:         e.Acronyms,
			CodeNames:       e.CodeNames,
			PrimeContractor: e.PrimeContractor,
			ContractValue:   e.ContractValue,
			ClearanceLevels: e.ClearanceLevels,
			Locations:       e.Locations,
			KeySkills:       e.KeySkills,
		}
	}
	if len(programs) == 0 {
		return nil, configErrorf("dictionary has no programs")
	}

	return build(programs)
}

// FromPrograms builds a dictionary directly from definitions. Test seam and
// embedding hook; applies the same collision checks as Parse.
func FromPrograms(defs []domain.ProgramDefinition) (*Dictionary, error) {
	programs := make(map[string]domain.ProgramDefinition, len(defs))
	for _, p := range defs {
		code := strings.TrimSpace(p.ProgramCode)
		if code == "" {
			return nil, configErrorf("empty program code")
		}
		if _, dup := programs[code]; dup {
			return nil, configErrorf("duplicate program code %q", code)
		}
		p.ProgramCode = code
		programs[code] = p
	}
	if len(programs) == 0 {
		return nil, configErrorf("dictionary has no programs")
	}
	return build(programs)
}
