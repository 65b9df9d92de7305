package domain

// ProgramDefinition is one dictionary entry for a known defense program.
// Reference data: loaded once per run, read-only afterwards.
type ProgramDefinition struct {
	ProgramCode     string
	FullName        string
	Aliases         []string
	CodeNames       []string
	PrimeContractor string
	ContractValue   string
	ClearanceLevels []string
	Locations       []string
	KeySkills       []string
}
