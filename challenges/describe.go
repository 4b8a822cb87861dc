package challenges

import (
	"fmt"
	"io"
)

// Describe writes one line per scenario in catalog order.
func (c *Catalog) Describe(w io.Writer) {
	scenarios := c.Scenarios()
	fmt.Fprintf(w, "catalog version %d, %d scenarios\n", c.Version, len(scenarios))
	for _, s := range scenarios {
		fmt.Fprintf(w, "%s: %s %s -> %d", s.ID(), s.Method, s.Path, s.Expect.Status)
		if s.Disabled != "" {
			fmt.Fprintf(w, " (disabled: %s)", s.Disabled)
		}
		fmt.Fprintln(w)
	}
}
