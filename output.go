package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	orchestratorx "github.com/tanpawarit/vapi-caller/agent/agents/orchestrator"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat applies -json as a shorthand for -output json.
func resolveFormat(output string, jsonOut bool) (string, error) {
	if jsonOut {
		return formatJSON, nil
	}
	switch format := strings.ToLower(strings.TrimSpace(output)); format {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
	}
}

var rawRule = strings.Repeat("=", 60)

// writeResult prints the report, or the call payload as returned by the platform.
// withRaw appends the JSON payload after a text report.
func writeResult(w io.Writer, res orchestratorx.Result, format string, withRaw bool) error {
	if format != formatText {
		return writeSnapshot(w, res, format)
	}

	if _, err := fmt.Fprintln(w, res.Report); err != nil {
		return err
	}
	if !withRaw {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s\nRAW JSON OUTPUT\n%s\n", rawRule, rawRule); err != nil {
		return err
	}
	return writeSnapshot(w, res, formatJSON)
}

func writeSnapshot(w io.Writer, res orchestratorx.Result, format string) error {
	if res.Snapshot != nil && len(res.Snapshot.Raw) > 0 {
		return writeRaw(w, res.Snapshot.Raw, format)
	}
	return writeStructured(w, res.Snapshot, format)
}

func writeRaw(w io.Writer, raw []byte, format string) error {
	if format == formatJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("indent call payload: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode call payload: %w", err)
	}
	return writeYAML(w, doc)
}

// writeStructured goes through JSON first so field names follow the json tags.
func writeStructured(w io.Writer, v any, format string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return writeRaw(w, raw, format)
}

func writeYAML(w io.Writer, doc any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
