package order

import (
	"fmt"
	"slices"

	"waterline/internal/pkg/errs"
)

const (
	PipelineWorkflowName = "pipeline"
	SimpleWorkflowName   = "simple"
)

// Workflow is a forward-only status graph plus the implicit edge from every
// non-terminal status to Cancelled.
type Workflow struct {
	name      string
	statuses  []Status
	edges     map[Status][]Status
	delivered Status
}

var (
	// PipelineWorkflow lets the fulfiller hand over straight from
	// out_for_delivery when the in_transit leg is not reported.
	PipelineWorkflow = Workflow{
		name:     PipelineWorkflowName,
		statuses: []Status{Pending, Confirmed, Preparing, OutForDelivery, InTransit, Delivered, Cancelled},
		edges: map[Status][]Status{
			Pending:        {Confirmed},
			Confirmed:      {Preparing},
			Preparing:      {OutForDelivery},
			OutForDelivery: {InTransit, Delivered},
			InTransit:      {Delivered},
		},
		delivered: Delivered,
	}

	SimpleWorkflow = Workflow{
		name:     SimpleWorkflowName,
		statuses: []Status{Pending, InProgress, Completed, Cancelled},
		edges: map[Status][]Status{
			Pending:    {InProgress},
			InProgress: {Completed},
		},
		delivered: Completed,
	}
)

// ParseWorkflow resolves a configured workflow name.
func ParseWorkflow(name string) (Workflow, error) {
	switch name {
	case PipelineWorkflowName:
		return PipelineWorkflow, nil
	case SimpleWorkflowName:
		return SimpleWorkflow, nil
	default:
		return Workflow{}, errs.NewValueIsInvalidErrorWithCause("workflow",
			fmt.Errorf("%q is not one of %s, %s", name, PipelineWorkflowName, SimpleWorkflowName))
	}
}

func (w Workflow) Name() string {
	return w.name
}

// Delivered is the status that makes an order eligible for rating.
func (w Workflow) Delivered() Status {
	return w.delivered
}

// Statuses lists the workflow vocabulary in forward order, ending with Cancelled.
func (w Workflow) Statuses() []Status {
	return slices.Clone(w.statuses)
}

// Next returns the forward successors of s.
func (w Workflow) Next(s Status) []Status {
	return slices.Clone(w.edges[s])
}

// Allows reports whether from -> to is an edge of the workflow graph,
// including the cancellation edge.
func (w Workflow) Allows(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	next, known := w.edges[from]
	if !known {
		return false
	}
	return to == Cancelled || slices.Contains(next, to)
}
