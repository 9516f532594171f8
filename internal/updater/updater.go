// Package updater provides a small primitive for change-tracking state
// transitions: "maybe transform the state, and remember whether you did."
//
// A transition never mutates its input. When it reports no change, the
// wrapper re-emits the input value itself, so callers can detect no-ops by
// reference equality without comparing structures.
package updater

// Result pairs a state value with a flag recording whether any transition
// in the chain so far has changed it.
type Result[S any] struct {
	Value   S
	Changed bool
}

// Transition computes the next state from the current one and an argument.
// It must treat state as read-only. Returning false marks a no-op; the
// returned value is then discarded and the input is carried forward.
type Transition[S, A any] func(state S, arg A) (S, bool)

// Updater wraps a Transition with change observation and composition.
type Updater[S, A any] struct {
	transition Transition[S, A]
	onChange   []func(S)
}

// New builds an Updater around the given transition.
func New[S, A any](t Transition[S, A]) *Updater[S, A] {
	return &Updater[S, A]{transition: t}
}

// OnChange appends an observer invoked after every transition that reports
// a change, in registration order. Observers can be attached at any point
// after construction.
func (u *Updater[S, A]) OnChange(fn func(S)) {
	u.onChange = append(u.onChange, fn)
}

// Apply runs the transition against a bare state.
func (u *Updater[S, A]) Apply(state S, arg A) Result[S] {
	next, changed := u.transition(state, arg)
	if !changed {
		// Keep the caller's value so no-ops preserve reference identity.
		return Result[S]{Value: state}
	}
	for _, fn := range u.onChange {
		fn(next)
	}
	return Result[S]{Value: next, Changed: true}
}

// ApplyResult runs the transition against a prior Result, OR-ing the
// incoming Changed flag into the output. Once a chain is dirty it stays
// dirty regardless of what later transitions report.
func (u *Updater[S, A]) ApplyResult(prev Result[S], arg A) Result[S] {
	next := u.Apply(prev.Value, arg)
	next.Changed = next.Changed || prev.Changed
	return next
}
