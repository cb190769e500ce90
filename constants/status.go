package constants

// RunStatus is the canonical status for rows in parse_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusParsed RunStatus = "PARSED"  // a layout produced fields
	RunStatusNoText RunStatus = "NO_TEXT" // collaborator returned too little text
	RunStatusFailed RunStatus = "FAILED"  // terminal failure
)
