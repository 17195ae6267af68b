package filter

import (
	"fmt"

	"github.com/inodb/vibe-prioritiser/internal/outcome"
)

// Report summarises the outcomes of one filter across all entities.
type Report struct {
	FilterType outcome.FilterType
	Passed     int
	Failed     int
	NotRun     int
	Messages   []string
}

// AddMessage appends a free-text message to the report.
func (r *Report) AddMessage(msg string) {
	r.Messages = append(r.Messages, msg)
}

// HasMessages reports whether any messages were added.
func (r *Report) HasMessages() bool {
	return len(r.Messages) > 0
}

func (r *Report) String() string {
	return fmt.Sprintf("filter report for %s: pass:%d fail:%d %v", r.FilterType, r.Passed, r.Failed, r.Messages)
}

// Reports tallies the recorded outcomes of the pipeline's filters, one
// report per filter in pipeline order. Filters implementing fmt.Stringer
// contribute their description as the first message.
func Reports[T any](p *Pipeline[T], sets []*outcome.Set) []*Report {
	reports := make([]*Report, len(p.filters))
	for i, f := range p.filters {
		rep := &Report{FilterType: f.Type()}
		if s, ok := f.(fmt.Stringer); ok {
			rep.AddMessage(s.String())
		}
		for _, set := range sets {
			switch set.Get(f.Type()) {
			case outcome.Pass:
				rep.Passed++
			case outcome.Fail:
				rep.Failed++
			default:
				rep.NotRun++
			}
		}
		reports[i] = rep
	}
	return reports
}
