package activity

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/five82/shelf/internal/logging"
)

// Entry is one parsed log record.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  []Field
	// Raw is set when the line was not a JSON record.
	Raw string
}

// Field is an extra key/value pair of a record, in key order.
type Field struct {
	Key   string
	Value string
}

// Read returns at most maxLines from the end of the file at path.
// A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open log")
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read log")
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Tail reads and parses the last maxLines records of the log at path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes a zap JSON line. Lines that are not JSON objects come back
// with only Raw set.
func Parse(line string) Entry {
	var e Entry
	d := jx.DecodeStr(line)
	if d.Next() != jx.Object {
		return Entry{Raw: line}
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case logging.TimeKey:
			s, err := d.Str()
			if err != nil {
				return err
			}
			if ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", s); err == nil {
				e.Time = ts
			}
		case logging.LevelKey:
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.Level = s
		case logging.NameKey:
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.Logger = s
		case logging.MessageKey:
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.Message = s
		default:
			v, err := fieldValue(d)
			if err != nil {
				return err
			}
			e.Fields = append(e.Fields, Field{Key: key, Value: v})
		}
		return nil
	})
	if err != nil {
		return Entry{Raw: line}
	}
	sort.SliceStable(e.Fields, func(i, j int) bool { return e.Fields[i].Key < e.Fields[j].Key })
	return e
}

func fieldValue(d *jx.Decoder) (string, error) {
	if d.Next() == jx.String {
		return d.Str()
	}
	raw, err := d.Raw()
	if err != nil {
		return "", err
	}
	return raw.String(), nil
}

// Format renders an entry as a single display line.
func (e Entry) Format() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(e.Level))
	if e.Logger != "" {
		b.WriteString(" [")
		b.WriteString(e.Logger)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for _, f := range e.Fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}
