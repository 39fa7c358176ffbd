package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// CorruptSuffix is appended to the path of an unparsable collection file to
// name the copy Load keeps of it.
const CorruptSuffix = ".corrupt"

// Save writes every record to path as a JSON object keyed by decimal id, in
// insertion order. The previous file is replaced atomically.
func (c *Collection[T, P, R]) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		data, err := c.records[id].MarshalRecord()
		if err != nil {
			return fmt.Errorf("encoding %s %d: %w", c.opts.Kind, id, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")
		buf.WriteString(strconv.Quote(strconv.Itoa(id)))
		buf.WriteString(": ")
		if err := json.Indent(&buf, data, "    ", "    "); err != nil {
			return fmt.Errorf("indenting %s %d: %w", c.opts.Kind, id, err)
		}
	}
	if len(c.order) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("saving %s collection: %w", c.opts.Kind, err)
	}
	c.log.Debug("collection saved", "path", path, "records", len(c.order))
	return nil
}

// Load reads a collection written by Save. It always returns a usable
// collection. A missing or unparsable file yields an empty collection and a
// warning wrapping types.ErrStoreUnavailable; an unparsable file is first
// copied aside to path+CorruptSuffix so a later Save cannot lose it. Entries
// that are not records at all are skipped (types.ErrSkippedRecord). Stored
// values that fail validation are kept and reported as types.FormatError
// values. All warnings are joined into warn. Loaded records are not part of
// the undo history.
func Load[T any, P any, R Ptr[T, P]](path string, opts Options) (c *Collection[T, P, R], warn error) {
	c = New[T, P, R](opts)

	data, err := os.ReadFile(path)
	if err != nil {
		return c, c.fallback(path, err)
	}
	entries, err := decodeObject(data)
	if err != nil {
		if berr := writeFileAtomic(path+CorruptSuffix, data); berr != nil {
			c.log.Warn("could not keep unreadable file", "path", path, "error", berr)
		}
		return c, c.fallback(path, err)
	}

	var warnings []error
	for _, e := range entries {
		id, err := strconv.Atoi(e.key)
		if err != nil || id <= 0 {
			warnings = append(warnings, fmt.Errorf("%w: %s key %q is not a positive id", types.ErrSkippedRecord, c.opts.Kind, e.key))
			continue
		}
		r := R(new(T))
		dc := &types.DecodeContext{Now: c.opts.Now()}
		if err := r.UnmarshalRecord(e.raw, dc); err != nil {
			warnings = append(warnings, fmt.Errorf("%w: %s %d: %w", types.ErrSkippedRecord, c.opts.Kind, id, err))
			continue
		}
		for _, w := range dc.Warnings {
			warnings = append(warnings, fmt.Errorf("%s %d: %w", c.opts.Kind, id, w))
		}
		if r.RecordID() != id {
			r.SetRecordID(id)
		}
		c.put(id, r)
		c.maxID = max(c.maxID, id)
	}

	for _, w := range warnings {
		c.log.Warn("load warning", "path", path, "error", w)
	}
	c.log.Debug("collection loaded", "path", path, "records", c.Len(), "max_id", c.maxID)
	return c, errors.Join(warnings...)
}

func (c *Collection[T, P, R]) fallback(path string, cause error) error {
	err := fmt.Errorf("%w: %s: %v", types.ErrStoreUnavailable, path, cause)
	level := slog.LevelWarn
	if errors.Is(cause, os.ErrNotExist) {
		level = slog.LevelInfo
	}
	c.log.Log(context.Background(), level, "starting with empty collection", "path", path, "error", cause)
	return err
}

// objectEntry is one member of a JSON object, kept in file order.
type objectEntry struct {
	key string
	raw json.RawMessage
}

// decodeObject parses data as a single JSON object and returns its members
// in file order.
func decodeObject(data []byte) ([]objectEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading object start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("top level is %v, want object", tok)
	}

	var entries []objectEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading value for %q: %w", key, err)
		}
		entries = append(entries, objectEntry{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return entries, nil
}

// writeFileAtomic writes data to path using the temp-file, fsync, rename
// pattern. The parent directory is created when missing.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
