// Package recording persists probe sample means so a run's probe history
// can be inspected after the fact.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	// SQLite is the storage backend.
	_ "github.com/mattn/go-sqlite3"
)

// A Sample is one per-component probe mean produced at a sampling step.
type Sample struct {
	GroupName string
	Probe     string
	Field     string
	Component int
	Step      int
	Time      float64
	Mean      float64
}

// A SampleRecorder stores probe samples.
type SampleRecorder interface {
	// Record buffers one sample for storage.
	Record(s Sample)

	// Flush writes all buffered samples to storage.
	Flush()

	// Close flushes and releases the storage.
	Close()
}

const samplesTable = "probe_samples"

// NewSQLiteRecorder creates a recorder backed by an SQLite database at the
// given path (without extension). An empty path picks a unique name.
func NewSQLiteRecorder(path string) SampleRecorder {
	if path == "" {
		path = "meshprobe_" + xid.New().String()
	}

	r := &sqliteRecorder{
		batchSize: 100000,
	}
	r.init(path)

	atexit.Register(func() { r.Flush() })

	return r
}

type sqliteRecorder struct {
	*sql.DB

	batchSize int
	buffered  []Sample
}

func (r *sqliteRecorder) init(path string) {
	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}
	r.DB = db

	fmt.Fprintf(os.Stderr, "Recording probe samples to: %s\n", filename)

	r.createTable()
}

func (r *sqliteRecorder) createTable() {
	names := structs.Names(Sample{})
	fields := strings.Join(names, ", \n\t")

	r.mustExecute("CREATE TABLE " + samplesTable +
		" (\n\t" + fields + "\n);")
}

func (r *sqliteRecorder) Record(s Sample) {
	r.buffered = append(r.buffered, s)

	if len(r.buffered) >= r.batchSize {
		r.Flush()
	}
}

func (r *sqliteRecorder) Flush() {
	if len(r.buffered) == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	stmt := r.prepareInsert()
	defer stmt.Close()

	for _, s := range r.buffered {
		v := []any{}

		fields := reflect.ValueOf(s)
		for i := 0; i < fields.NumField(); i++ {
			v = append(v, fields.Field(i).Interface())
		}

		_, err := stmt.Exec(v...)
		if err != nil {
			panic(err)
		}
	}

	r.buffered = nil
}

func (r *sqliteRecorder) Close() {
	r.Flush()

	err := r.DB.Close()
	if err != nil {
		panic(err)
	}
}

func (r *sqliteRecorder) prepareInsert() *sql.Stmt {
	names := structs.Names(Sample{})
	for i := range names {
		names[i] = "?"
	}

	stmt, err := r.Prepare("INSERT INTO " + samplesTable +
		" VALUES (" + strings.Join(names, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}

func (r *sqliteRecorder) mustExecute(query string) sql.Result {
	res, err := r.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
