package queryengine

import (
	"context"
	"fmt"

	"github.com/corpuslex/corpuslex/internal/postingops"
	"github.com/corpuslex/corpuslex/pkg/errors"
	"github.com/corpuslex/corpuslex/pkg/tracing"
)

// Evaluate walks rpn, maintaining a stack of posting lists, and returns
// the single remaining list. Stack underflow, or more than one list
// remaining at the end, fails with ErrMalformedExpression.
func (e *Engine) Evaluate(rpn []token) ([]uint32, error) {
	var stack [][]uint32

	pop := func() ([]uint32, error) {
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: operand stack underflow", errors.ErrMalformedExpression)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, nil
	}

	for _, tok := range rpn {
		switch tok.kind {
		case tokTerm:
			stack = append(stack, e.postingsFor(tok.term))
		case tokNot:
			a, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, postingops.Complement(a, e.universeIDs))
		case tokAnd:
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, postingops.Intersect(a, b))
		case tokOr:
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, postingops.Union(a, b))
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: expected one result list, got %d", errors.ErrMalformedExpression, len(stack))
	}
	return stack[0], nil
}

// Result is the outcome of evaluating one query: the full matching
// posting list before pagination is applied.
type Result struct {
	DocIDs []uint32
}

// Search tokenizes, parses and evaluates query against the engine.
func (e *Engine) Search(query string) (Result, error) {
	return e.SearchContext(context.Background(), query)
}

// SearchContext behaves like Search but records a tokenize/parse/evaluate
// span tree under ctx's current span, if any, giving callers a per-phase
// latency breakdown without a tracing backend dependency.
func (e *Engine) SearchContext(ctx context.Context, query string) (Result, error) {
	tctx, tokenizeSpan := tracing.StartChildSpan(ctx, "tokenize")
	tokens := tokenize(query)
	tokenizeSpan.SetAttr("token_count", len(tokens))
	tokenizeSpan.End()
	_ = tctx

	if len(tokens) == 0 {
		return Result{DocIDs: nil}, nil
	}

	_, parseSpan := tracing.StartChildSpan(ctx, "parse")
	rpn, err := toRPN(tokens)
	parseSpan.End()
	if err != nil {
		return Result{}, err
	}

	_, evalSpan := tracing.StartChildSpan(ctx, "evaluate")
	docIDs, err := e.Evaluate(rpn)
	evalSpan.SetAttr("match_count", len(docIDs))
	evalSpan.End()
	if err != nil {
		return Result{}, err
	}
	return Result{DocIDs: docIDs}, nil
}

// Page is one paginated slice of a Result, ready for output rendering.
type Page struct {
	Total  int
	DocIDs []uint32
}

// Paginate slices result.DocIDs starting at offset for up to limit
// entries. If offset is at or beyond the total count, DocIDs is empty
// but Total still reflects the full match count.
func (r Result) Paginate(offset, limit int) Page {
	total := len(r.DocIDs)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Page{Total: total}
	}
	end := offset + limit
	if end > total || limit < 0 {
		end = total
	}
	return Page{Total: total, DocIDs: r.DocIDs[offset:end]}
}
