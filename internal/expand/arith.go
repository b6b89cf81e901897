// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"fmt"
	"strconv"
	"strings"
)

// EvalArith evaluates a POSIX $((...)) arithmetic expression: integers,
// + - * / % unary minus, parentheses, with standard precedence. A shell
// without it cannot run the arithmetic idioms ("$((i+1))") scripts rely
// on for loop counters.
func EvalArith(expr string) (int64, error) {
	toks, err := tokenizeArith(expr)
	if err != nil {
		return 0, err
	}
	p := &arithParser{toks: toks}
	v, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("arith: unexpected trailing input at token %d", p.pos)
	}
	return v, nil
}

type arithTokKind int

const (
	arithNumber arithTokKind = iota
	arithOp
	arithLParen
	arithRParen
)

type arithTok struct {
	kind arithTokKind
	text string
	num  int64
}

func tokenizeArith(expr string) ([]arithTok, error) {
	var toks []arithTok
	r := []rune(strings.TrimSpace(expr))
	n := len(r)
	i := 0

	for i < n {
		c := r[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < n && r[j] >= '0' && r[j] <= '9' {
				j++
			}
			v, err := strconv.ParseInt(string(r[i:j]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("arith: invalid number %q", string(r[i:j]))
			}
			toks = append(toks, arithTok{kind: arithNumber, num: v})
			i = j
		case c == '(':
			toks = append(toks, arithTok{kind: arithLParen})
			i++
		case c == ')':
			toks = append(toks, arithTok{kind: arithRParen})
			i++
		case strings.ContainsRune("+-*/%", c):
			toks = append(toks, arithTok{kind: arithOp, text: string(c)})
			i++
		default:
			return nil, fmt.Errorf("arith: unexpected character %q", string(c))
		}
	}

	return toks, nil
}

// arithParser is a small precedence-climbing parser over the token stream:
// parseExpr(0) parses the lowest-precedence level (+ -), delegating to
// higher levels for * / % and unary minus.
type arithParser struct {
	toks []arithTok
	pos  int
}

var arithPrecedence = map[string]int{"+": 1, "-": 1, "*": 2, "/": 2, "%": 2}

func (p *arithParser) peek() (arithTok, bool) {
	if p.pos >= len(p.toks) {
		return arithTok{}, false
	}
	return p.toks[p.pos], true
}

func (p *arithParser) parseExpr(minPrec int) (int64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != arithOp {
			break
		}
		prec, isBinary := arithPrecedence[tok.text]
		if !isBinary || prec < minPrec {
			break
		}
		p.pos++
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return 0, err
		}
		left, err = applyArithOp(tok.text, left, right)
		if err != nil {
			return 0, err
		}
	}
	return left, nil
}

func (p *arithParser) parseUnary() (int64, error) {
	tok, ok := p.peek()
	if ok && tok.kind == arithOp && tok.text == "-" {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	if ok && tok.kind == arithOp && tok.text == "+" {
		p.pos++
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *arithParser) parsePrimary() (int64, error) {
	tok, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("arith: unexpected end of expression")
	}
	switch tok.kind {
	case arithNumber:
		p.pos++
		return tok.num, nil
	case arithLParen:
		p.pos++
		v, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		close, ok := p.peek()
		if !ok || close.kind != arithRParen {
			return 0, fmt.Errorf("arith: missing closing parenthesis")
		}
		p.pos++
		return v, nil
	default:
		return 0, fmt.Errorf("arith: unexpected token at position %d", p.pos)
	}
}

// ExpandArithmetic replaces every $((expr)) span in line with the decimal
// result of evaluating expr. A span that fails to evaluate is left as
// literal text and reported as a Warning rather than aborting the whole
// expansion.
func ExpandArithmetic(line string) (string, []Warning) {
	var b strings.Builder
	var warnings []Warning
	r := []rune(line)
	n := len(r)
	i := 0

	for i < n {
		if r[i] == '\'' {
			j := i + 1
			for j < n && r[j] != '\'' {
				j++
			}
			if j < n {
				j++
			}
			b.WriteString(string(r[i:j]))
			i = j
			continue
		}
		if r[i] == '$' && i+2 < n && r[i+1] == '(' && r[i+2] == '(' {
			j := i + 3
			depth := 2
			for j < n && depth > 0 {
				switch r[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			inner := ""
			if depth == 0 {
				inner = string(r[i+3 : j-2])
			}
			v, err := EvalArith(inner)
			if err != nil {
				warnings = append(warnings, Warning{Pos: i, Msg: err.Error()})
				b.WriteString(string(r[i:j]))
			} else {
				b.WriteString(strconv.FormatInt(v, 10))
			}
			i = j
			continue
		}
		b.WriteRune(r[i])
		i++
	}

	return b.String(), warnings
}

func applyArithOp(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("arith: division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, fmt.Errorf("arith: division by zero")
		}
		return a % b, nil
	default:
		return 0, fmt.Errorf("arith: unknown operator %q", op)
	}
}
