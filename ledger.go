package redisbasic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/redisbasic/internal/util"
	pr "github.com/unkn0wn-root/redisbasic/provider"
)

// StoreOp is the name Cache.Store is recorded under.
const StoreOp = "Cache.store"

// ErrHistoryDesync is returned by Verify when the counter and the history
// lists of an operation disagree.
var ErrHistoryDesync = errors.New("redisbasic: call history out of sync")

// Op is a single-argument operation that can be recorded.
type Op[In, Out any] func(ctx context.Context, in In) (Out, error)

// Ledger records calls in the store: a counter at <name> and two aligned
// lists at <name>:inputs and <name>:outputs.
//
// The counter and the history are written with separate commands. A failure
// between them leaves the counter ahead of the lists; Verify detects that.
type Ledger struct {
	p     pr.Provider
	hooks Hooks
	log   Logger
}

func NewLedger(p pr.Provider, hooks Hooks, log Logger) *Ledger {
	return &Ledger{
		p:     p,
		hooks: coalesce[Hooks](hooks, NopHooks{}),
		log:   coalesce[Logger](log, NopLogger{}),
	}
}

// CountCalls increments the counter at name before every call of op.
// If the increment fails, op is not called.
func CountCalls[In, Out any](l *Ledger, name string, op Op[In, Out]) Op[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		if _, err := l.p.Incr(ctx, name); err != nil {
			var zero Out
			return zero, l.fail(name, "count", err)
		}
		return op(ctx, in)
	}
}

// CallHistory appends the formatted input before calling op and the formatted
// output after it. A failed op is recorded as "error: <msg>" so the two lists
// stay index-aligned. If only the output append fails, op's result is still
// returned together with the error.
func CallHistory[In, Out any](l *Ledger, name string, op Op[In, Out]) Op[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		if _, err := l.p.RPush(ctx, util.InputsKey(name), []byte(formatArg(in))); err != nil {
			var zero Out
			return zero, l.fail(name, "inputs", err)
		}

		out, opErr := op(ctx, in)

		rec := formatResult(out)
		if opErr != nil {
			rec = "error: " + opErr.Error()
		}
		if _, err := l.p.RPush(ctx, util.OutputsKey(name), []byte(rec)); err != nil {
			return out, errors.Join(opErr, l.fail(name, "outputs", err))
		}
		return out, opErr
	}
}

func (l *Ledger) fail(name, stage string, err error) error {
	l.hooks.BookkeepingError(name, stage, err)
	l.log.Warn("call bookkeeping failed", Fields{"op": name, "stage": stage, "err": err})
	return &BookkeepingError{Op: name, Stage: stage, Err: err}
}

// Call is one recorded invocation.
type Call struct {
	Input  string
	Output string
}

// History is the recorded trace of an operation.
type History struct {
	Op    string
	Count int64
	Calls []Call
}

// String renders the trace:
//
//	Cache.store was called 2 times:
//	Cache.store("foo") -> 5b3f...
//	Cache.store(42) -> 0e1c...
func (h History) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s was called %d times:\n", h.Op, h.Count)
	for _, c := range h.Calls {
		fmt.Fprintf(&b, "%s(%s) -> %s\n", h.Op, c.Input, c.Output)
	}
	return b.String()
}

// History reads the counter and pairs inputs with outputs in call order.
// Unpaired trailing entries (from an interrupted call) are left out.
func (l *Ledger) History(ctx context.Context, name string) (History, error) {
	h := History{Op: name}

	count, err := l.count(ctx, name)
	if err != nil {
		return h, err
	}
	h.Count = count

	inputs, err := l.p.LRange(ctx, util.InputsKey(name), 0, -1)
	if err != nil {
		return h, fmt.Errorf("redisbasic: read %s inputs: %w", name, err)
	}
	outputs, err := l.p.LRange(ctx, util.OutputsKey(name), 0, -1)
	if err != nil {
		return h, fmt.Errorf("redisbasic: read %s outputs: %w", name, err)
	}

	n := min(len(inputs), len(outputs))
	h.Calls = make([]Call, n)
	for i := 0; i < n; i++ {
		h.Calls[i] = Call{Input: string(inputs[i]), Output: string(outputs[i])}
	}
	return h, nil
}

// Replay returns the rendered trace of name. It does not modify the store.
func (l *Ledger) Replay(ctx context.Context, name string) (string, error) {
	h, err := l.History(ctx, name)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Verify checks that the counter and both history lists of name have the
// same length.
func (l *Ledger) Verify(ctx context.Context, name string) error {
	count, err := l.count(ctx, name)
	if err != nil {
		return err
	}
	in, err := l.p.LLen(ctx, util.InputsKey(name))
	if err != nil {
		return fmt.Errorf("redisbasic: llen %s inputs: %w", name, err)
	}
	out, err := l.p.LLen(ctx, util.OutputsKey(name))
	if err != nil {
		return fmt.Errorf("redisbasic: llen %s outputs: %w", name, err)
	}
	if count != in || in != out {
		return fmt.Errorf("%w: %s count=%d inputs=%d outputs=%d", ErrHistoryDesync, name, count, in, out)
	}
	return nil
}

// count reads the counter at name; a missing counter is 0.
func (l *Ledger) count(ctx context.Context, name string) (int64, error) {
	raw, ok, err := l.p.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("redisbasic: read %s count: %w", name, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, &DecodeError{Key: name, Err: err}
	}
	return n, nil
}
