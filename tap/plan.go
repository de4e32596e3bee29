package tap

// Plan is an ordered, named group of test points. It is built once by the
// code that discovers tests and is only read by the engine.
type Plan struct {
	fileName    string
	description string
	skipped     bool
	points      []registeredPoint
}

type registeredPoint struct {
	run         TestPoint
	description string
}

// NewPlan creates a plan bound to fileName. The description is trimmed and
// a blank description is treated as absent. For a skipped plan it is also
// the skip reason.
func NewPlan(fileName, description string, skipped bool) *Plan {
	return &Plan{
		fileName:    fileName,
		description: singleLine(description),
		skipped:     skipped,
	}
}

// AddTestPoint appends a test point. Registration order is execution order
// and nothing prevents adding the same function twice.
func (p *Plan) AddTestPoint(point TestPoint, description string) {
	p.points = append(p.points, registeredPoint{run: point, description: singleLine(description)})
}

// FileName returns the source the plan was built from.
func (p *Plan) FileName() string { return p.fileName }

// Description returns the trimmed description, or "" when absent.
func (p *Plan) Description() string { return p.description }

// Skipped reports whether the plan must not run any test point.
func (p *Plan) Skipped() bool { return p.skipped }

// Len returns the number of registered test points.
func (p *Plan) Len() int { return len(p.points) }

// runnable reports whether the plan has anything to execute.
func (p *Plan) runnable() bool {
	return !p.skipped && len(p.points) > 0
}
