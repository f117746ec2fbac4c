package printer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// thermalNameHints are substrings that mark a spooler queue as a likely
// receipt printer. Matched case-insensitively against queue names.
var thermalNameHints = []string{
	"thermal",
	"receipt",
	"epson",
	"tm-",
	"tm_",
	"pos",
	"star",
	"bixolon",
}

// listQueues returns the names of all spooler queues, via lpstat -p.
func listQueues() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "lpstat", "-p").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: lpstat -p: %v", ErrStatusProbe, err)
	}
	return parseQueueNames(string(out)), nil
}

// parseQueueNames extracts queue names from lpstat -p output. Each queue
// is reported as "printer <name> is idle. ..." or similar.
func parseQueueNames(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "printer" {
			names = append(names, fields[1])
		}
	}
	return names
}

// findThermalQueue scans the spooler for a queue whose name suggests a
// receipt printer. The first match wins.
func findThermalQueue() (string, error) {
	names, err := listQueues()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, hint := range thermalNameHints {
			if strings.Contains(lower, hint) {
				return name, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no thermal queue among %d spooler queues", ErrNoPrinterFound, len(names))
}

// parseQueueStatus maps lpstat output keywords onto a printer status.
// CUPS surfaces printer-state-reasons in the long listing; the common
// thermal printer reasons are matched by substring.
func parseQueueStatus(out string) Status {
	lower := strings.ToLower(out)

	switch {
	case strings.Contains(lower, "media-empty"), strings.Contains(lower, "paper out"):
		return StatusPaperOut
	case strings.Contains(lower, "media-low"), strings.Contains(lower, "paper low"):
		return StatusPaperLow
	case strings.Contains(lower, "cover-open"), strings.Contains(lower, "door-open"):
		return StatusCoverOpen
	case strings.Contains(lower, "cutter"):
		return StatusCutterError
	case strings.Contains(lower, "overheat"), strings.Contains(lower, "high-temperature"):
		return StatusOverheat
	case strings.Contains(lower, "mechanical"), strings.Contains(lower, "motor"):
		return StatusMechanicalError
	case strings.Contains(lower, "offline"), strings.Contains(lower, "unreachable"),
		strings.Contains(lower, "disabled"), strings.Contains(lower, "paused"):
		return StatusOffline
	default:
		return StatusReady
	}
}
