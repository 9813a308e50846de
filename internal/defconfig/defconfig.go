// Package defconfig reads and writes Kconfig override files.
//
// The format is the line-oriented one Kconfig tools produce:
//
//	CONFIG_CPUS_NR=4
//	CONFIG_ARCH="aarch64"
//	# CONFIG_TLSF is not set
//
// Values are kept as literal text; coercion to the declared symbol type
// happens in the resolver.
package defconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/roach88/kgen/internal/ir"
)

// Prefix is prepended to every symbol name in a defconfig file.
const Prefix = "CONFIG_"

var (
	assignRe = regexp.MustCompile(`^` + Prefix + `([A-Za-z0-9_]+)=(.*)$`)
	unsetRe  = regexp.MustCompile(`^# ` + Prefix + `([A-Za-z0-9_]+) is not set$`)
)

// NotSet is the override text recorded for a "# CONFIG_X is not set"
// line. It never comes out of an assignment line.
const NotSet = "\x00not set"

// Overrides maps symbol names (without prefix) to literal text.
type Overrides map[string]string

// Lookup returns the override text for name as a symbol of type t. A
// NotSet entry reads as n for a bool and as no override otherwise.
func (o Overrides) Lookup(name string, t ir.Type) (string, bool) {
	v, ok := o[name]
	if !ok || v != NotSet {
		return v, ok
	}
	if t == ir.TypeBool {
		return "n", true
	}
	return "", false
}

// LineError describes a line that could not be understood.
type LineError struct {
	Path string
	Line int
	Text string
	Msg  string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Path, e.Line, e.Msg, e.Text)
}

// Parse reads overrides from r. "is not set" lines are recorded as NotSet.
// Malformed lines do not stop parsing; they are returned as LineErrors. A symbol assigned twice keeps the last value.
// path is only used in LineErrors.
func Parse(r io.Reader, path string) (Overrides, []*LineError, error) {
	out := make(Overrides)
	var problems []*LineError

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if m := unsetRe.FindStringSubmatch(text); m != nil {
			out[m[1]] = NotSet
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		m := assignRe.FindStringSubmatch(text)
		if m == nil {
			problems = append(problems, &LineError{Path: path, Line: line, Text: text, Msg: "ignoring malformed line"})
			continue
		}
		val, err := unquote(m[2])
		if err != nil {
			problems = append(problems, &LineError{Path: path, Line: line, Text: text, Msg: err.Error()})
			continue
		}
		out[m[1]] = val
	}
	if err := sc.Err(); err != nil {
		return nil, problems, fmt.Errorf("read %s: %w", path, err)
	}
	return out, problems, nil
}

// Load reads the override file at path. A missing file is not an error and
// yields empty overrides; any other read failure is. Malformed lines are
// logged as warnings.
func Load(path string, logger *slog.Logger) (Overrides, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no override file", "path", path)
		return Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open override file: %w", err)
	}
	defer f.Close()

	out, problems, err := Parse(f, path)
	if err != nil {
		return nil, err
	}
	for _, p := range problems {
		logger.Warn(p.Msg, "path", p.Path, "line", p.Line, "text", p.Text)
	}
	logger.Debug("loaded override file", "path", path, "count", len(out))
	return out, nil
}

// unquote strips Kconfig string quoting. Unquoted text is returned as is.
func unquote(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return "", errors.New("unterminated string value")
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			b.WriteByte(body[i])
			continue
		}
		if c == '"' {
			return "", errors.New("unescaped quote in string value")
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Write renders a resolved mapping in defconfig form, in mapping order.
func Write(w io.Writer, m *ir.Mapping) error {
	bw := bufio.NewWriter(w)
	for _, e := range m.Entries() {
		var line string
		switch v := e.Value.(type) {
		case ir.Bool:
			if v {
				line = Prefix + e.Name + "=y"
			} else {
				line = "# " + Prefix + e.Name + " is not set"
			}
		case ir.String:
			line = Prefix + e.Name + "=" + quote(string(v))
		default:
			line = Prefix + e.Name + "=" + v.Text()
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
