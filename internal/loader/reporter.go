package loader

import "log"

// Reporter observes load progress. It must not influence the load.
type Reporter interface {
	Wiped(regions, universities int64)
	Created(kind, parent, name string)
	Skipped(kind, name, reason string)
}

// LogReporter writes progress to the standard logger. Aggregate roots are
// logged at info; dependents only when Debug is set.
type LogReporter struct {
	Debug bool
}

func (r LogReporter) Wiped(regions, universities int64) {
	log.Printf("[info] wiped catalog regions=%d universities=%d", regions, universities)
}

func (r LogReporter) Created(kind, parent, name string) {
	if parent == "" {
		log.Printf("[info] created %s name=%q", kind, name)
		return
	}
	if r.Debug {
		log.Printf("[debug] created %s parent=%q name=%q", kind, parent, name)
	}
}

func (r LogReporter) Skipped(kind, name, reason string) {
	log.Printf("[warn] skipped %s name=%q reason=%s", kind, name, reason)
}

type nopReporter struct{}

func (nopReporter) Wiped(int64, int64)              {}
func (nopReporter) Created(string, string, string) {}
func (nopReporter) Skipped(string, string, string) {}
