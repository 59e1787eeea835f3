package access

import "context"

// Decision is the access evaluator verdict for one inbound request.
type Decision string

const (
	DecisionGranted Decision = "granted"
	DecisionDenied  Decision = "denied"
)

// IAccessUsecase decides whether a user may request video delivery right now.
// Every inbound message re-checks storage; there is no caching layer.
type IAccessUsecase interface {
	Evaluate(ctx context.Context, id int64) (Decision, error)

	// Grant opens a fresh 24-hour window anchored at call time.
	Grant(ctx context.Context, id int64) error
}
