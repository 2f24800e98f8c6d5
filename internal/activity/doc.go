// Package activity reads shelf's own log file back for the activity view.
//
// # Reading
//
// Read uses a ring buffer of maxLines entries so only the tail of the file is
// kept in memory, regardless of file size. A missing file is not an error: the
// view simply shows nothing until the first record is written.
//
// # Parsing
//
// Records are the JSON lines written by package logging. Parse decodes the
// well-known keys (time, level, logger name, message) with go-faster/jx and
// keeps every other key as a Field, sorted by key. Anything that is not a JSON
// object is kept verbatim in Entry.Raw, so panics or foreign output still show
// up.
//
//	entries, err := activity.Tail(cfg.LogFile, 200)
//	for _, e := range entries {
//		fmt.Println(e.Format())
//	}
package activity
