package timebucket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.

	"github.com/mintel/timebucket/pkg/datemath" // NOW/d-7d expressions.
	"github.com/mintel/timebucket/pkg/window"   // Window tiling.
)

// eval prints each expression as an RFC 3339 instant.
func (app *App) eval(e *datemath.Evaluator) error {
	for _, expr := range app.flags.Eval.Exprs {
		t, err := e.Evaluate(expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.Stdout, t.Format(time.RFC3339Nano))
	}
	return nil
}

// find prints the bucket containing an instant.
func (app *App) find(e *datemath.Evaluator) error {
	at, err := e.Evaluate(app.flags.Find.At)
	if err != nil {
		return err
	}
	w, err := window.Find(at, app.flags.Find.Granularity)
	if err != nil {
		return err
	}
	app.observeWindows(1)
	if app.flags.Find.JSON {
		return app.printJSON(w)
	}
	fmt.Fprintln(app.Stdout, w)
	return nil
}

// split prints the buckets of a window.
func (app *App) split(e *datemath.Evaluator) error {
	ws, err := app.flags.Split.tile(e)
	if err != nil {
		return err
	}
	app.observeWindows(len(ws))
	if app.flags.Split.JSON {
		return app.printJSON(ws)
	}
	for _, w := range ws {
		fmt.Fprintln(app.Stdout, w)
	}
	return nil
}

// tile parses the window and edge mode flags, and splits the window.
func (f *TileFlags) tile(e *datemath.Evaluator) ([]window.Window, error) {
	w, err := window.ParseWith(e, f.Window)
	if err != nil {
		return nil, err
	}
	mode, err := window.ParseEdgeMode(f.Edges)
	if err != nil {
		return nil, err
	}
	ws, err := window.Split(w, f.Granularities, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot split %s", w)
	}
	return ws, nil
}

func (app *App) printJSON(v interface{}) error {
	enc := json.NewEncoder(app.Stdout)
	return errors.Wrap(enc.Encode(v), "error writing JSON")
}
