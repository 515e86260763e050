// Package pipeline provides label-preserving transformation steps over
// frames. Every step keeps the row index of its input; steps that do not
// define new columns also keep the column labels.
package pipeline

import (
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
)

// Transformer is a step that learns from data in Fit and applies what it
// learned in Transform. labels may be nil; no bundled step uses them.
type Transformer interface {
	Fit(data *frame.Frame, labels []any) error
	Transform(data *frame.Frame) (*frame.Frame, error)
}

// FitTransform fits t and transforms the same data.
func FitTransform(t Transformer, data *frame.Frame, labels []any) (*frame.Frame, error) {
	if err := checkLabels(data, labels); err != nil {
		return nil, err
	}
	if err := t.Fit(data, labels); err != nil {
		return nil, err
	}
	return t.Transform(data)
}

// Pipeline runs its steps in order. Fit feeds each step the output of the
// previous fitted step.
type Pipeline struct {
	Steps []Transformer
}

// New creates a pipeline from steps.
func New(steps ...Transformer) *Pipeline {
	return &Pipeline{Steps: steps}
}

func (p *Pipeline) Fit(data *frame.Frame, labels []any) error {
	if err := checkLabels(data, labels); err != nil {
		return err
	}
	current := data
	for i, step := range p.Steps {
		if err := step.Fit(current, labels); err != nil {
			return errors.Wrapf(err, "pipeline step %d fit", i)
		}
		if i == len(p.Steps)-1 {
			break
		}
		next, err := step.Transform(current)
		if err != nil {
			return errors.Wrapf(err, "pipeline step %d transform", i)
		}
		// Row-dropping steps shrink the frame; keep labels aligned.
		labels = alignLabels(current, next, labels)
		current = next
	}
	return nil
}

func (p *Pipeline) Transform(data *frame.Frame) (*frame.Frame, error) {
	current := data.Clone()
	for i, step := range p.Steps {
		next, err := step.Transform(current)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline step %d transform", i)
		}
		current = next
	}
	return current, nil
}

// FeatureUnion fits every step on the same input and inner-joins their
// outputs on the row index, in step order.
type FeatureUnion struct {
	Steps []Transformer
}

func (u *FeatureUnion) Fit(data *frame.Frame, labels []any) error {
	if len(u.Steps) == 0 {
		return errors.NewInvalidArgumentError("feature union has no steps")
	}
	for i, step := range u.Steps {
		if err := step.Fit(data, labels); err != nil {
			return errors.Wrapf(err, "feature union step %d fit", i)
		}
	}
	return nil
}

func (u *FeatureUnion) Transform(data *frame.Frame) (*frame.Frame, error) {
	if len(u.Steps) == 0 {
		return nil, errors.NewInvalidArgumentError("feature union has no steps")
	}
	var out *frame.Frame
	for i, step := range u.Steps {
		part, err := step.Transform(data)
		if err != nil {
			return nil, errors.Wrapf(err, "feature union step %d transform", i)
		}
		if out == nil {
			out = part
			continue
		}
		out = out.JoinIndex(part)
	}
	return out, nil
}

func checkLabels(data *frame.Frame, labels []any) error {
	if labels != nil && len(labels) != data.Len() {
		return errors.NewInvalidArgumentError("%d labels for %d rows", len(labels), data.Len())
	}
	return nil
}

func alignLabels(before, after *frame.Frame, labels []any) []any {
	if labels == nil || before.Len() == after.Len() {
		return labels
	}
	byIndex := make(map[string]any, len(labels))
	for i, idx := range before.Index {
		byIndex[idx] = labels[i]
	}
	out := make([]any, len(after.Index))
	for i, idx := range after.Index {
		out[i] = byIndex[idx]
	}
	return out
}

func notFitted(step string) error {
	return errors.WithHint(
		errors.NewInvalidArgumentError("%s is not fitted", step),
		"call Fit before Transform")
}
