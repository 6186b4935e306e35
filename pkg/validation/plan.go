package validation

// Step runs one or more checks against a report and returns
// whether the step as a whole succeeded.
type Step func(r *Report) bool

type stageKind int

const (
	stageGate stageKind = iota
	stageCheck
	stageOptional
)

type stage struct {
	kind stageKind
	cond func() bool
	step Step
}

// Plan is a declarative gate-then-checks pipeline. Stages run in
// the order they were added. A failing gate ends the run and the
// report keeps only the checks recorded so far; failing checks
// never stop the plan.
type Plan struct {
	workflow string
	stages   []stage
}

// NewPlan starts a plan whose report is labelled workflow.
func NewPlan(workflow string) *Plan {
	return &Plan{workflow: workflow}
}

// Gate adds a precondition. When it returns false the plan stops.
func (p *Plan) Gate(step Step) *Plan {
	p.stages = append(p.stages, stage{kind: stageGate, step: step})
	return p
}

// Then adds a step that always runs once the preceding gates
// have passed.
func (p *Plan) Then(step Step) *Plan {
	p.stages = append(p.stages, stage{kind: stageCheck, step: step})
	return p
}

// Optional adds a step that runs only when cond holds at the
// time the stage is reached. A false condition records nothing.
func (p *Plan) Optional(cond func() bool, step Step) *Plan {
	p.stages = append(p.stages, stage{
		kind: stageOptional, cond: cond, step: step,
	})
	return p
}

// Run executes the stages against a fresh report.
func (p *Plan) Run() *Report {
	r := NewReport(p.workflow)
	for _, s := range p.stages {
		if s.kind == stageOptional && !s.cond() {
			continue
		}
		ok := s.step(r)
		if s.kind == stageGate && !ok {
			break
		}
	}
	return r
}

// IfFile is an Optional condition that holds when path is a
// regular file.
func IfFile(path string) func() bool {
	return func() bool { return isFile(path) }
}

// IfDir is an Optional condition that holds when path is a
// directory.
func IfDir(path string) func() bool {
	return func() bool { return isDir(path) }
}
