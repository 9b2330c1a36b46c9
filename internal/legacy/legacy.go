// Package legacy upgrades expense files written by older dashboard versions,
// whose dates are DD/MM/YY strings without month or year fields.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fenykepesz/expense-dashboard/internal/fsutil"
	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// dateLayouts are tried in order.
var dateLayouts = []string{"2/1/06", "2/1/2006", model.DateFormat}

// Skip describes an entry left out of the migrated file.
type Skip struct {
	Index    int // 1-based
	Merchant string
	Reason   string
}

// Result summarizes one migration.
type Result struct {
	Converted int
	Skipped   []Skip
}

// field is one key of a JSON object, kept in source order.
type field struct {
	key   string
	value json.RawMessage
}

type object []field

func (o object) get(key string) (json.RawMessage, bool) {
	for _, f := range o {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

func (o *object) set(key string, v json.RawMessage) {
	for i, f := range *o {
		if f.key == key {
			(*o)[i].value = v
			return
		}
	}
	*o = append(*o, field{key: key, value: v})
}

// Migrate reads a legacy JSON array from r and writes the upgraded array to
// w. Every field of an entry is preserved; date is rewritten as YYYY-MM-DD
// and year and month are set from it.
func Migrate(r io.Reader, w io.Writer) (*Result, error) {
	entries, err := decodeArray(r)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var out []object
	for i, raw := range entries {
		obj, err := decodeObject(raw)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Index: i + 1, Reason: "not an object"})
			continue
		}
		merchant := stringField(obj, "merchant")

		d, err := entryDate(obj)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Index: i + 1, Merchant: merchant, Reason: err.Error()})
			continue
		}

		obj.set("date", mustMarshal(d.Format(model.DateFormat)))
		obj.set("year", mustMarshal(d.Year()))
		obj.set("month", mustMarshal(d.Month().String()))
		out = append(out, obj)
	}
	res.Converted = len(out)

	if err := encodeArray(w, out); err != nil {
		return nil, err
	}
	return res, nil
}

// MigrateFile migrates src into dst, replacing dst atomically.
func MigrateFile(src, dst string) (*Result, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	res, err := Migrate(f, &buf)
	if err != nil {
		return nil, fmt.Errorf("migrating %s: %w", src, err)
	}

	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := fsutil.WriteFileAtomic(dst, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", dst, err)
	}
	return res, nil
}

// ParseDate parses the date spellings found in legacy files.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func entryDate(obj object) (time.Time, error) {
	raw, ok := obj.get("date")
	if !ok {
		return time.Time{}, errors.New("missing date")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}, errors.New("missing date")
	}
	return ParseDate(s)
}

func stringField(obj object, key string) string {
	raw, ok := obj.get(key)
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

func decodeArray(r io.Reader) ([]json.RawMessage, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("expected a JSON array of expenses")
	}

	var entries []json.RawMessage
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	return entries, nil
}

func decodeObject(raw json.RawMessage) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}

	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		obj = append(obj, field{key: key, value: v})
	}
	return obj, nil
}

func encodeArray(w io.Writer, objs []object) error {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, obj := range objs {
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.WriteByte('{')
		for j, f := range obj {
			if j > 0 {
				compact.WriteByte(',')
			}
			compact.Write(mustMarshal(f.key))
			compact.WriteByte(':')
			compact.Write(f.value)
		}
		compact.WriteByte('}')
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// mustMarshal encodes strings and ints, which cannot fail. HTML characters
// are left unescaped.
func mustMarshal(v any) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
