// Package report persists, ranks and charts the results of bat optimizer
// runs.
package report

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Baaaaam/optim"
	"github.com/Baaaaam/optim/bat"

	_ "modernc.org/sqlite"
)

const (
	// TblRuns is the name of the sql database table with one row per run:
	// function name, population size, dimension, evaluations and best value.
	TblRuns = "batruns"
	// TblTrace is the name of the sql database table that contains the
	// global best value of each run at each iteration.
	TblTrace = "battrace"
	// TblBestPos is the name of the sql database table that contains the
	// final best position of each run, one row per dimension.
	TblBestPos = "batbestpos"
)

var ErrNoRun = errors.New("no such run")

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path.  Use
// ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %v: %w", path, err)
	}
	// a second connection to ":memory:" would be a different database
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore creates the run tables in db if they don't exist yet.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initdb(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initdb() error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblRuns + " (run INTEGER PRIMARY KEY AUTOINCREMENT, func TEXT, npop INTEGER, ndim INTEGER, neval INTEGER, best REAL);",
		"CREATE TABLE IF NOT EXISTS " + TblTrace + " (run INTEGER, iter INTEGER, val REAL);",
		"CREATE TABLE IF NOT EXISTS " + TblBestPos + " (run INTEGER, dim INTEGER, x REAL);",
	}
	for _, s0 := range stmts {
		if _, err := s.db.Exec(s0); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// Save records r and returns its run id.
func (s *Store) Save(r *bat.Result) (run int64, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.Exec("INSERT INTO "+TblRuns+" (func,npop,ndim,neval,best) VALUES (?,?,?,?,?);",
		r.Name, r.PopSize, r.Best.Len(), r.Neval, r.Best.Val)
	if err != nil {
		return 0, fmt.Errorf("saving run: %w", err)
	}
	run, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare("INSERT INTO " + TblTrace + " (run,iter,val) VALUES (?,?,?);")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, v := range r.Trace {
		if _, err = stmt.Exec(run, i, v); err != nil {
			return 0, fmt.Errorf("saving trace: %w", err)
		}
	}

	for i, x := range r.Best.Pos() {
		_, err = tx.Exec("INSERT INTO "+TblBestPos+" (run,dim,x) VALUES (?,?,?);", run, i, x)
		if err != nil {
			return 0, fmt.Errorf("saving best position: %w", err)
		}
	}

	return run, tx.Commit()
}

// Load reads back the run with the given id.
func (s *Store) Load(run int64) (*bat.Result, error) {
	r := &bat.Result{}
	var best float64
	var ndim int
	err := s.db.QueryRow("SELECT func,npop,ndim,neval,best FROM "+TblRuns+" WHERE run = ?;", run).
		Scan(&r.Name, &r.PopSize, &ndim, &r.Neval, &best)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %v: %w", run, ErrNoRun)
	} else if err != nil {
		return nil, err
	}

	r.Trace, err = s.floats("SELECT val FROM "+TblTrace+" WHERE run = ? ORDER BY iter;", run)
	if err != nil {
		return nil, fmt.Errorf("loading trace: %w", err)
	}
	pos, err := s.floats("SELECT x FROM "+TblBestPos+" WHERE run = ? ORDER BY dim;", run)
	if err != nil {
		return nil, fmt.Errorf("loading best position: %w", err)
	}
	if len(pos) != ndim {
		return nil, fmt.Errorf("run %v: best position has %v of %v dimensions", run, len(pos), ndim)
	}
	r.Best = optim.NewPoint(pos, best)
	return r, nil
}

// Runs returns the ids of all runs of the named function, oldest first.
func (s *Store) Runs(name string) ([]int64, error) {
	rows, err := s.db.Query("SELECT run FROM "+TblRuns+" WHERE func = ? ORDER BY run;", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []int64
	for rows.Next() {
		var run int64
		if err := rows.Scan(&run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) floats(query string, args ...any) ([]float64, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vals []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, rows.Err()
}
