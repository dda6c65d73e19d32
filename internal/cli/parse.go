package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// parseDemand reads a ratio such as "54,18,24", "54:18:24" or "54 18 24".
// Commas, colons and whitespace may be mixed. Values are not validated
// beyond being integers; Solve rejects non-positive demand.
func parseDemand(s string) (splitter.Demand, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ':' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDemand, "no demand given (expected e.g. 54:18:24)")
	}

	d := make(splitter.Demand, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDemand, err, "output %d: %q is not an integer", i+1, f)
		}
		d[i] = v
	}
	return d, nil
}

// parseDemandArgs joins command arguments so "54 18 24" and "54:18:24" are
// equivalent on the command line.
func parseDemandArgs(args []string) (splitter.Demand, error) {
	return parseDemand(strings.Join(args, " "))
}

// looksLikePlanFile reports whether arg names a saved plan rather than a
// demand ratio.
func looksLikePlanFile(arg string) bool {
	if strings.EqualFold(filepath.Ext(arg), ".json") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// isQuit reports whether an interactive line asks to leave.
func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
