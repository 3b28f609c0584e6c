package queryengine

import (
	"fmt"

	"github.com/corpuslex/corpuslex/pkg/errors"
)

func precedence(k tokenKind) int {
	switch k {
	case tokNot:
		return 3
	case tokAnd:
		return 2
	case tokOr:
		return 1
	default:
		return 0
	}
}

func rightAssoc(k tokenKind) bool { return k == tokNot }

// toRPN runs shunting-yard over tokens, producing postfix order for the
// evaluator. Unmatched parentheses fail with ErrUnbalancedParentheses.
func toRPN(tokens []token) ([]token, error) {
	var output []token
	var opStack []token

	popOp := func() token {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		return top
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokTerm:
			output = append(output, tok)
		case tokAnd, tokOr, tokNot:
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				if top.kind == tokLParen {
					break
				}
				topPrec, curPrec := precedence(top.kind), precedence(tok.kind)
				if topPrec > curPrec || (topPrec == curPrec && !rightAssoc(tok.kind)) {
					output = append(output, popOp())
					continue
				}
				break
			}
			opStack = append(opStack, tok)
		case tokLParen:
			opStack = append(opStack, tok)
		case tokRParen:
			found := false
			for len(opStack) > 0 {
				top := popOp()
				if top.kind == tokLParen {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, fmt.Errorf("%w: unmatched )", errors.ErrUnbalancedParentheses)
			}
		}
	}
	for len(opStack) > 0 {
		top := popOp()
		if top.kind == tokLParen {
			return nil, fmt.Errorf("%w: unmatched (", errors.ErrUnbalancedParentheses)
		}
		output = append(output, top)
	}
	return output, nil
}
