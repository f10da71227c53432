package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"rpgpanel/internal/form"
	"rpgpanel/internal/resource"
)

// parsePairs turns repeated key=value flags into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[key] = value
	}
	return out, nil
}

// itemEdit is one --item flag: a new entry for a group field.
type itemEdit struct {
	Group  string
	Values map[string]string
}

// parseItem reads group:sub=value,sub=value.
func parseItem(raw string) (itemEdit, error) {
	group, rest, ok := strings.Cut(raw, ":")
	group = strings.TrimSpace(group)
	if !ok || group == "" {
		return itemEdit{}, fmt.Errorf("expected group:field=value,..., got %q", raw)
	}
	var pairs []string
	if strings.TrimSpace(rest) != "" {
		pairs = strings.Split(rest, ",")
	}
	values, err := parsePairs(pairs)
	if err != nil {
		return itemEdit{}, fmt.Errorf("item %s: %w", group, err)
	}
	return itemEdit{Group: group, Values: values}, nil
}

// editFlags are the field edits shared by create and update.
type editFlags struct {
	Set   []string
	Items []string
	Clear []string
}

// apply writes the edits into an open form. Clears run first so that
// --clear and --item together replace a group.
func (e editFlags) apply(f *form.Controller) error {
	for _, name := range e.Clear {
		if err := f.Fill(resource.Record{name: []any{}}); err != nil {
			return err
		}
	}

	values, err := parsePairs(e.Set)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(values) {
		if err := f.Set(key, values[key]); err != nil {
			return err
		}
	}

	for _, raw := range e.Items {
		item, err := parseItem(raw)
		if err != nil {
			return err
		}
		index, err := f.AddItem(item.Group)
		if err != nil {
			return err
		}
		for _, sub := range sortedKeys(item.Values) {
			if err := f.SetItem(item.Group, index, sub, item.Values[sub]); err != nil {
				return err
			}
		}
	}
	return nil
}

// promptConfirm asks on out and reads a yes/no answer from in.
func promptConfirm(in io.Reader, out io.Writer) form.Confirmer {
	reader := bufio.NewReader(in)
	return form.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}

func printRecord(out io.Writer, record resource.Record) {
	for _, key := range record.Keys() {
		fmt.Fprintf(out, "%s: %s\n", key, resource.FormatValue(record[key]))
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
