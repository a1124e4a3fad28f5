package purge

import (
	"fmt"
	"os"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/uthapjhojho/graphmail/internal/platform/graph"
)

// cliReporter renders deletion progress as an mpb bar on stderr, keeping
// stdout clean for the command's JSON document.
type cliReporter struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	mu       sync.Mutex

	statusMsg string
}

func newCLIReporter() *cliReporter {
	return &cliReporter{
		progress:  mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr)),
		statusMsg: "Searching...",
	}
}

func (r *cliReporter) Report(p graph.ProgressReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Step == graph.StepInit && r.bar == nil {
		r.bar = r.progress.AddBar(int64(p.Total),
			mpb.PrependDecorators(
				decor.Any(func(st decor.Statistics) string {
					return fmt.Sprintf("%-14s", r.statusMsg)
				}, decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.OnComplete(
					decor.AverageETA(decor.ET_STYLE_GO), "done",
				),
			),
		)
		return
	}

	if r.bar == nil {
		r.statusMsg = p.Step
		return
	}

	if p.Step == graph.StepDelete {
		r.statusMsg = fmt.Sprintf("Deleting %d/%d", p.Current, p.Total)
		r.bar.SetCurrent(int64(p.Current))
	}
}

func (r *cliReporter) Wait() {
	r.mu.Lock()
	bar := r.bar
	r.mu.Unlock()

	// an unfinished bar would make Wait block forever
	if bar != nil && !bar.Completed() {
		bar.Abort(false)
	}
	r.progress.Wait()
}
