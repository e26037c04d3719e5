package format

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default; strict JSON, one document per line unless pretty)
// - plain (aligned columns for human eyes; v must implement Tabular)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "plain":
		return WritePlain(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
//
// NOTE: Output stays strict JSON only. Anything advisory belongs in a `meta`
// object or `_hints` fields, never interleaved text.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Tabular is implemented by values that can render themselves as a plain
// header + rows table.
type Tabular interface {
	TabHeader() []string
	TabRows() [][]string
}

func WritePlain(w io.Writer, v any) error {
	tab, ok := v.(Tabular)
	if !ok {
		// Fall back to pretty JSON rather than failing: plain output should
		// never be the reason a command errors.
		return WriteJSON(w, v, true)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRow(tw, tab.TabHeader())
	for _, row := range tab.TabRows() {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
