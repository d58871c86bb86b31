// Package out writes result envelopes in the CLI's two output modes. JSON
// mode emits the envelope verbatim for machine consumers; plain mode
// flattens each record into sorted key=value lines for shell pipelines.
package out

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/afuentes/suicoin/internal/config"
	"github.com/afuentes/suicoin/internal/model"
)

// Render writes env to w according to settings. --select narrows the data
// payload to the named fields and --results-only drops the envelope frame
// entirely; both apply before the mode is chosen.
func Render(w io.Writer, env model.Envelope, settings config.Settings) error {
	data := env.Data
	if len(settings.SelectFields) > 0 {
		data = pickFields(data, settings.SelectFields)
	}

	if settings.ResultsOnly {
		if settings.OutputMode == "json" {
			return writeJSON(w, data)
		}
		return writePlain(w, data)
	}

	if settings.OutputMode == "json" {
		env.Data = data
		return writeJSON(w, env)
	}

	frame := map[string]any{
		"success":  env.Success,
		"data":     data,
		"warnings": env.Warnings,
		"meta":     env.Meta,
	}
	if env.Error != nil {
		frame["error"] = env.Error
	}
	return writePlain(w, frame)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writePlain emits one line per record. Slices print element-wise so a list
// of coins becomes one coin per line; an empty slice still prints something
// so pipelines can tell "no results" from "no output".
func writePlain(w io.Writer, data any) error {
	v := reflect.ValueOf(data)
	if !v.IsValid() {
		_, err := fmt.Fprintln(w, "null")
		return err
	}

	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if v.Len() == 0 {
			_, err := fmt.Fprintln(w, "[]")
			return err
		}
		for i := 0; i < v.Len(); i++ {
			if err := writeLine(w, v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return writeLine(w, data)
}

func writeLine(w io.Writer, v any) error {
	line, err := formatLine(toPlainValue(v))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, line)
	return err
}

func pickFields(data any, fields []string) any {
	switch t := toPlainValue(data).(type) {
	case []any:
		picked := make([]map[string]any, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			picked = append(picked, pickFromMap(m, fields))
		}
		return picked
	case map[string]any:
		return pickFromMap(t, fields)
	default:
		return t
	}
}

func pickFromMap(m map[string]any, fields []string) map[string]any {
	picked := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			picked[f] = v
		}
	}
	return picked
}

// toPlainValue round-trips v through JSON so typed structs and maps collapse
// into the same generic shape, with json tags deciding the key names.
func toPlainValue(v any) any {
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var plain any
	if err := json.Unmarshal(buf, &plain); err != nil {
		return v
	}
	return plain
}

func formatLine(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		buf, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " "), nil
}
