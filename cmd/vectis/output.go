package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vectis/vector"
)

// render writes v in the configured output format. text renders the
// human-readable form.
func (a *app) render(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	out := cmd.OutOrStdout()

	switch a.cfg.Output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(out)
	}
}

// renderMap prints a server object with sorted keys.
func (a *app) renderMap(cmd *cobra.Command, m map[string]any) error {
	return a.render(cmd, m, func(w io.Writer) error {
		for _, k := range sortedKeys(m) {
			if _, err := fmt.Fprintf(w, "%s: %v\n", k, m[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *app) renderOK(cmd *cobra.Command) error {
	return a.render(cmd, map[string]string{"status": "ok"}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "OK")
		return err
	})
}

// parseVector parses "0.1,0.2,0.3".
func parseVector(s string) (vector.Vector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return vector.Vector{}, fmt.Errorf("empty vector")
	}

	parts := strings.Split(s, ",")
	data := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return vector.Vector{}, fmt.Errorf("component %d: %w", i, err)
		}
		data[i] = f
	}
	return vector.FromFloat64(data), nil
}

func formatVector(v vector.Vector) string {
	parts := make([]string, v.Dim())
	for i, x := range v.Slice() {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}
