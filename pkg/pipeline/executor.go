package pipeline

import (
	"github.com/rhuss/adminguard/pkg/debug"
)

// Execute runs stages in order against ex. The first non-Continue outcome
// ends the chain; a chain that runs to completion forwards.
//
// When a stage fails, the Boundary stages that precede it are offered the
// error, innermost first. An error no boundary resolves is returned as is.
// A cancelled request context stops execution before the next stage.
func Execute(ex *Exchange, stages []Stage) (Outcome, error) {
	for i, st := range stages {
		if err := ex.Request.Context().Err(); err != nil {
			return Outcome{}, err
		}

		debug.Trace("pipeline", "running stage", "stage", st.Name(), "chain", ex.Chain)
		out, err := st.Process(ex)
		if err != nil {
			debug.Log("pipeline", "stage failed", "stage", st.Name(), "chain", ex.Chain, "error", err)
			return translate(ex, stages[:i], err)
		}
		if out.Kind != Continue {
			debug.Log("pipeline", "chain ended", "stage", st.Name(), "chain", ex.Chain, "outcome", out.Kind.String())
			return out, nil
		}
	}
	return ForwardRequest(), nil
}

func translate(ex *Exchange, enclosing []Stage, err error) (Outcome, error) {
	for j := len(enclosing) - 1; j >= 0; j-- {
		b, ok := enclosing[j].(Boundary)
		if !ok {
			continue
		}
		out, terr := b.Translate(ex, err)
		if terr == nil {
			return out, nil
		}
		err = terr
	}
	return Outcome{}, err
}
