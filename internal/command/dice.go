package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/slashkit/pkg/converter"
)

var (
	formulaToken = regexp.MustCompile(`(?i)^[\dd+\-*/]+$`)
	termToken    = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceToken    = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
)

const (
	maxDice  = 100
	maxSides = 1000
)

var ErrDivisionByZero = errors.New("division by zero")

type term struct {
	op    string
	text  string
	count int
	sides int
	value int
	dice  bool
}

// Formula is a parsed dice expression such as "2d6+1d4*2-3". Multiplication
// and division bind tighter than addition and subtraction.
type Formula struct {
	Text  string
	terms []term
}

// ParseFormula validates a dice expression without rolling it.
func ParseFormula(s string) (Formula, error) {
	text := strings.ReplaceAll(s, " ", "")
	parts := termToken.FindAllString(text, -1)
	if len(parts) == 0 || strings.Join(parts, "") != text {
		return Formula{}, fmt.Errorf("can't parse `%s`, try something like `2d6+1d4*2-3`", s)
	}

	f := Formula{Text: text}
	op, expectOperand := "+", true
	for _, p := range parts {
		if isOperator(p) {
			if expectOperand {
				return Formula{}, fmt.Errorf("operator `%s` is missing its left operand", p)
			}
			op, expectOperand = p, true
			continue
		}
		if !expectOperand {
			return Formula{}, fmt.Errorf("missing operator before `%s`", p)
		}
		t, err := parseTerm(p)
		if err != nil {
			return Formula{}, err
		}
		t.op = op
		f.terms = append(f.terms, t)
		expectOperand = false
	}
	if expectOperand {
		return Formula{}, fmt.Errorf("`%s` ends with an operator", text)
	}
	return f, nil
}

func isOperator(s string) bool {
	return s == "+" || s == "-" || s == "*" || s == "/"
}

func parseTerm(p string) (term, error) {
	if m := diceToken.FindStringSubmatch(p); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return term{}, fmt.Errorf("invalid dice count in `%s`", p)
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return term{}, fmt.Errorf("invalid dice sides in `%s`", p)
		}
		if count > maxDice || sides > maxSides {
			return term{}, fmt.Errorf("`%s` is too big, max %d dice with %d sides", p, maxDice, maxSides)
		}
		return term{text: strings.ToLower(p), count: count, sides: sides, dice: true}, nil
	}

	n, err := strconv.Atoi(p)
	if err != nil {
		return term{}, fmt.Errorf("`%s` is not a number or dice", p)
	}
	return term{text: p, value: n}, nil
}

// Roll is the outcome of rolling a Formula.
type Roll struct {
	Total  int
	Detail string
}

// Roll evaluates the formula using intn for every die.
func (f Formula) Roll(intn func(n int) int) (Roll, error) {
	type operand struct {
		op   string
		n    int
		desc string
	}

	var merged []operand
	for _, t := range f.terms {
		v := operand{op: t.op, n: t.value, desc: fmt.Sprintf("`%d`", t.value)}
		if t.dice {
			rolls := make([]string, t.count)
			v.n = 0
			for i := range rolls {
				r := intn(t.sides) + 1
				v.n += r
				rolls[i] = strconv.Itoa(r)
			}
			v.desc = fmt.Sprintf("`%s` [%s]", t.text, strings.Join(rolls, ", "))
		}

		if t.op != "*" && t.op != "/" {
			merged = append(merged, v)
			continue
		}
		prev := &merged[len(merged)-1]
		if t.op == "/" {
			if v.n == 0 {
				return Roll{}, ErrDivisionByZero
			}
			prev.n /= v.n
		} else {
			prev.n *= v.n
		}
		prev.desc = fmt.Sprintf("%s %s %s", prev.desc, t.op, v.desc)
	}

	var (
		r       Roll
		details strings.Builder
	)
	for i, v := range merged {
		if i > 0 {
			fmt.Fprintf(&details, " %s ", v.op)
		}
		details.WriteString(v.desc)
		if v.op == "-" {
			r.Total -= v.n
		} else {
			r.Total += v.n
		}
	}
	r.Detail = details.String()
	return r, nil
}

// Dice consumes the leading tokens that look like parts of a dice formula,
// so "2d6 + 1d4 attack" yields the formula and leaves "attack".
func Dice() converter.Converter[Formula] {
	return converter.Coalescing("dice formula",
		func(_ context.Context, _ converter.Scope, tokens []string) (Formula, int, error) {
			n := 0
			for n < len(tokens) && formulaToken.MatchString(tokens[n]) {
				n++
			}
			if n == 0 {
				return Formula{}, 0, converter.Reject("`%s` is not a dice formula like `2d6+1d4*2-3`", tokens[0])
			}
			f, err := ParseFormula(strings.Join(tokens[:n], ""))
			if err != nil {
				return Formula{}, 0, converter.Reject("%s", err.Error())
			}
			return f, n, nil
		})
}
