package utils

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// ParallelForEachRow splits [0, rows) into contiguous bands, one goroutine per band, and calls f
// for every row. A panic inside f is recovered in its goroutine and returned as an error once all
// bands finish.
func ParallelForEachRow(rows int, f func(y int)) error {
	if rows <= 0 {
		return nil
	}
	bands := ParallelFactor
	if bands > rows {
		bands = rows
	}
	bandSize := rows / bands
	extra := rows % bands

	var group errgroup.Group
	from := 0
	for band := 0; band < bands; band++ {
		to := from + bandSize
		if band < extra {
			to++
		}
		start, end := from, to
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Wrapf(PanicToError(r), "panic in rows [%d, %d)", start, end)
				}
			}()
			for y := start; y < end; y++ {
				f(y)
			}
			return nil
		})
		from = to
	}
	return group.Wait()
}

// PanicToError converts a recovered value into an error, keeping it as-is when it already is one.
func PanicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Errorf("%v", r)
}
