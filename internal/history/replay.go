package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ruchy-lang/ruchy/internal/config"
	"github.com/ruchy-lang/ruchy/internal/evaluator"
	"github.com/ruchy-lang/ruchy/internal/session"
)

// Divergence is a replayed submission whose outcome differs from the
// recording.
type Divergence struct {
	Seq      int
	Source   string
	Recorded session.Entry
	Replayed session.Entry
}

func (d Divergence) String() string {
	return fmt.Sprintf("#%d %q: recorded value=%q error=%q stdout=%q, replayed value=%q error=%q stdout=%q",
		d.Seq, d.Source,
		d.Recorded.Value, d.Recorded.Error, d.Recorded.Stdout,
		d.Replayed.Value, d.Replayed.Error, d.Replayed.Stdout)
}

// Report is the outcome of a replay.
type Report struct {
	SessionID   string
	Replayed    int
	Divergences []Divergence
}

// Replay re-executes the recorded submissions of sessionID in a fresh
// session and compares value, error and stdout of each. The replaying
// session is reset wherever the recorded one was.
func Replay(ctx context.Context, store *Store, sessionID string, limits config.Limits, logger *slog.Logger) (*Report, error) {
	entries, err := store.Entries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no recorded entries for session %s", sessionID)
	}

	sess := session.New(session.WithLimits(limits), session.WithLogger(logger))
	report := &Report{SessionID: sessionID}
	epoch := entries[0].Epoch
	for _, rec := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if rec.Epoch != epoch {
			sess.Reset()
			epoch = rec.Epoch
		}
		res := sess.EvalSource(ctx, rec.Source)
		got := session.Entry{SessionID: sessionID, Seq: rec.Seq, Epoch: rec.Epoch, Source: rec.Source, Stdout: res.Stdout}
		if res.Value != nil {
			got.Value = evaluator.Display(res.Value)
		}
		if err := res.Err(); err != nil {
			got.Error = err.Error()
		}
		report.Replayed++
		if got.Value != rec.Value || got.Error != rec.Error || got.Stdout != rec.Stdout {
			report.Divergences = append(report.Divergences, Divergence{Seq: rec.Seq, Source: rec.Source, Recorded: rec, Replayed: got})
		}
	}
	return report, nil
}
