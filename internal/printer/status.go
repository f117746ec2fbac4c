package printer

// Status represents the printer's reported condition. Values travel in
// heartbeat and status records, so they are stable wire strings.
type Status string

const (
	StatusReady           Status = "ready"
	StatusPaperOut        Status = "paper_out"
	StatusPaperLow        Status = "paper_low"
	StatusCoverOpen       Status = "cover_open"
	StatusCutterError     Status = "cutter_error"
	StatusOverheat        Status = "overheat"
	StatusMechanicalError Status = "mechanical_error"
	StatusOffline         Status = "offline"
)

// Printable reports whether a job can be attempted in this state.
// Paper-low is a warning, not a stop condition.
func (s Status) Printable() bool {
	return s == StatusReady || s == StatusPaperLow
}
