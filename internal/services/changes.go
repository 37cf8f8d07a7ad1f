package services

import (
	"fmt"
	"sort"

	"github.com/r3labs/diff/v3"

	"teambudget/internal/core"
)

// Changes names the top level state sections that differ between a and b,
// using the JSON field names ("roster", "feeStructure", "season", ...).
func Changes(a, b core.RosterState) ([]string, error) {
	changelog, err := diff.Diff(a, b, diff.TagName("json"))
	if err != nil {
		return nil, fmt.Errorf("diff snapshots: %w", err)
	}

	seen := make(map[string]struct{})
	for _, c := range changelog {
		if len(c.Path) == 0 {
			continue
		}
		section := c.Path[0]
		// team settings are embedded; report their own field names
		if section == "TeamSettings" && len(c.Path) > 1 {
			section = c.Path[1]
		}
		seen[section] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
