package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/kgen/internal/ir"
)

// Flags returns the build flags of m in declaration order: the lower-cased
// name of every true bool, and name="value" for every non-empty string.
// The value is lower-cased and placed between double quotes as is, with no
// escaping. False bools and empty strings contribute nothing; ints are not
// flags.
func Flags(m *ir.Mapping) []string {
	var out []string
	for _, e := range m.OfType(ir.TypeBool, ir.TypeString) {
		name := strings.ToLower(e.Name)
		switch v := e.Value.(type) {
		case ir.Bool:
			if v {
				out = append(out, name)
			}
		case ir.String:
			if v != "" {
				out = append(out, name+`="`+strings.ToLower(string(v))+`"`)
			}
		}
	}
	return out
}

// WriteFlags writes one flag per line.
func WriteFlags(w io.Writer, flags []string) error {
	bw := bufio.NewWriter(w)
	for _, f := range flags {
		fmt.Fprintln(bw, f)
	}
	return bw.Flush()
}
