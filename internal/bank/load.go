package bank

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Load reads a bank from disk. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON.
func Load(path string) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()

	var qs []Question
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		qs, err = DecodeYAML(f)
	default:
		qs, err = DecodeJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", path, err)
	}
	return qs, nil
}

// DecodeJSON streams the bank token by token so option order survives;
// encoding into a Go map would lose it.
func DecodeJSON(r io.Reader) ([]Question, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var qs []Question
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			id, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			q, err := decodeJSONQuestion(dec, id)
			if err != nil {
				return nil, err
			}
			qs = append(qs, q)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected %v after the question list", tok)
	}
	return qs, nil
}

func decodeJSONQuestion(dec *json.Decoder, id string) (Question, error) {
	q := Question{ID: normalize(id)}
	if err := expectDelim(dec, '{'); err != nil {
		return q, fmt.Errorf("question %s: %w", id, err)
	}
	for dec.More() {
		field, err := readKey(dec)
		if err != nil {
			return q, fmt.Errorf("question %s: %w", id, err)
		}
		switch field {
		case "question":
			var prompt string
			if err := dec.Decode(&prompt); err != nil {
				return q, fmt.Errorf("question %s: prompt: %w", id, err)
			}
			q.Prompt = normalize(prompt)
		case "options":
			opts, err := decodeJSONOptions(dec)
			if err != nil {
				return q, fmt.Errorf("question %s: options: %w", id, err)
			}
			q.Options = opts
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return q, fmt.Errorf("question %s: field %s: %w", id, field, err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return q, fmt.Errorf("question %s: %w", id, err)
	}
	return q, nil
}

func decodeJSONOptions(dec *json.Decoder) ([]Option, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var opts []Option
	for dec.More() {
		text, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		correct, ok := tok.(bool)
		if !ok {
			return nil, fmt.Errorf("option %q: expected true or false, got %v", text, tok)
		}
		opts = append(opts, Option{Text: normalize(text), Correct: correct})
	}
	return opts, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// DecodeYAML reads the same shape as DecodeJSON from YAML, walking the node
// tree to keep mapping order.
func DecodeYAML(r io.Reader) ([]Question, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence of questions", root.Line)
	}

	var qs []Question
	for _, entry := range root.Content {
		if entry.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: expected a mapping", entry.Line)
		}
		for i := 0; i+1 < len(entry.Content); i += 2 {
			q, err := decodeYAMLQuestion(entry.Content[i].Value, entry.Content[i+1])
			if err != nil {
				return nil, err
			}
			qs = append(qs, q)
		}
	}
	return qs, nil
}

func decodeYAMLQuestion(id string, body *yaml.Node) (Question, error) {
	q := Question{ID: normalize(id)}
	if body.Kind != yaml.MappingNode {
		return q, fmt.Errorf("question %s: line %d: expected a mapping", id, body.Line)
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i].Value, body.Content[i+1]
		switch key {
		case "question":
			var prompt string
			if err := val.Decode(&prompt); err != nil {
				return q, fmt.Errorf("question %s: prompt: %w", id, err)
			}
			q.Prompt = normalize(prompt)
		case "options":
			if val.Kind != yaml.MappingNode {
				return q, fmt.Errorf("question %s: line %d: options must be a mapping", id, val.Line)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				var correct bool
				if err := val.Content[j+1].Decode(&correct); err != nil {
					return q, fmt.Errorf("question %s: option %q: %w", id, val.Content[j].Value, err)
				}
				q.Options = append(q.Options, Option{Text: normalize(val.Content[j].Value), Correct: correct})
			}
		}
	}
	return q, nil
}

// normalize trims and composes text to NFC so equivalent Devanagari
// sequences shape and compare identically.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
