// Package verify re-reads emitted test cases and replays their sheet
// history, re-checking every structural rule and safety margin. It backs
// the verify subcommand and the end-to-end generation properties.
package verify

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wojtekmal/foldgen/internal/constants"
	"github.com/wojtekmal/foldgen/internal/gen"
	"github.com/wojtekmal/foldgen/internal/geom"
	"github.com/wojtekmal/foldgen/internal/safety"
)

// Case is a parsed test case.
type Case struct {
	Sheets  int
	Queries int
	Ops     []gen.Op
	Points  []gen.Query
}

// Issue is one problem found while checking a case. Line is the 1-based
// line number in the source file.
type Issue struct {
	Line int
	Msg  string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Msg)
}

// Parse reads a test case in the emitted format. It fails on the first
// malformed line; semantic problems are left to Check.
func Parse(r io.Reader) (*Case, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		lineNo++
		return sc.Text(), nil
	}

	header, err := next()
	if err != nil {
		return nil, fmt.Errorf("line 1: missing header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("line 1: header has %d fields, want 2", len(fields))
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("line 1: bad sheet count %q", fields[0])
	}
	q, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("line 1: bad query count %q", fields[1])
	}
	if n < 1 || q < 0 {
		return nil, fmt.Errorf("line 1: implausible header %d %d", n, q)
	}

	c := &Case{Sheets: n, Queries: q}

	for i := 0; i < n; i++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("line %d: missing operation: %w", lineNo+1, err)
		}
		op, err := parseOp(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		c.Ops = append(c.Ops, op)
	}

	for j := 0; j < q; j++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("line %d: missing query: %w", lineNo+1, err)
		}
		qu, err := parseQuery(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		c.Points = append(c.Points, qu)
	}

	for sc.Scan() {
		lineNo++
		if strings.TrimSpace(sc.Text()) != "" {
			return nil, fmt.Errorf("line %d: trailing content after last query", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func parseOp(line string) (gen.Op, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return gen.Op{}, fmt.Errorf("empty operation line")
	}
	if len(fields[0]) != 1 {
		return gen.Op{}, fmt.Errorf("bad operation code %q", fields[0])
	}

	switch kind := gen.OpKind(fields[0][0]); kind {
	case gen.OpRect, gen.OpCircle:
		wantArgs := 4
		if kind == gen.OpCircle {
			wantArgs = 3
		}
		if len(fields)-1 != wantArgs {
			return gen.Op{}, fmt.Errorf("%c operation has %d args, want %d", kind, len(fields)-1, wantArgs)
		}
		args, err := parseFloats(fields[1:])
		if err != nil {
			return gen.Op{}, err
		}
		return gen.Op{Kind: kind, Args: args}, nil

	case gen.OpFold:
		if len(fields) != 6 {
			return gen.Op{}, fmt.Errorf("Z operation has %d fields, want 6", len(fields))
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return gen.Op{}, fmt.Errorf("bad fold source %q", fields[1])
		}
		args, err := parseFloats(fields[2:])
		if err != nil {
			return gen.Op{}, err
		}
		return gen.Op{Kind: kind, Sheet: k, Args: args}, nil

	default:
		return gen.Op{}, fmt.Errorf("unknown operation code %q", fields[0])
	}
}

func parseQuery(line string) (gen.Query, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return gen.Query{}, fmt.Errorf("query has %d fields, want 3", len(fields))
	}
	k, err := strconv.Atoi(fields[0])
	if err != nil {
		return gen.Query{}, fmt.Errorf("bad sheet index %q", fields[0])
	}
	coords, err := parseFloats(fields[1:])
	if err != nil {
		return gen.Query{}, err
	}
	return gen.Query{Sheet: k, P: geom.Point{X: coords[0], Y: coords[1]}}, nil
}

// replaySlack absorbs the drift introduced by fixed-precision emission.
// Candidates are validated against full-precision geometry but emitted at
// 6 decimals, so a replayed coincidence lands near zero rather than at it,
// and reflected features of deep fold chains drift by up to ~1e-4. The
// checker treats anything within the slack as coincident and narrows the
// danger margin by the same amount, so rounding alone never raises an
// issue while genuinely ambiguous inputs are still caught.
const replaySlack = 1e-3

// Check replays the case's sheet history and reports every violation of
// the construction rules: out-of-range sheet references, non-positive
// shapes, degenerate or unsafe fold lines, and query points inside the
// ambiguous safety zone of the sheet they target.
func Check(c *Case) []Issue {
	var issues []Issue
	checker := safety.Checker{
		ZeroTol:   replaySlack,
		DangerEps: constants.DangerEps - replaySlack,
	}
	sheets := make([]geom.Geometry, 1, c.Sheets+1)

	for idx, op := range c.Ops {
		i := idx + 1    // sheet index being defined
		line := idx + 2 // header is line 1

		switch op.Kind {
		case gen.OpRect:
			if op.Args[2] <= op.Args[0] || op.Args[3] <= op.Args[1] {
				issues = append(issues, Issue{line, "rectangle has non-positive side"})
			}
			sheets = append(sheets, geom.Rect(op.Args[0], op.Args[1], op.Args[2], op.Args[3]))

		case gen.OpCircle:
			if op.Args[2] <= 0 {
				issues = append(issues, Issue{line, "circle has non-positive radius"})
			}
			sheets = append(sheets, geom.Disc(op.Args[0], op.Args[1], op.Args[2]))

		case gen.OpFold:
			if op.Sheet < 1 || op.Sheet >= i {
				issues = append(issues, Issue{line, fmt.Sprintf("fold source %d out of range [1,%d)", op.Sheet, i)})
				// No valid parent to fold; carry an empty sheet so later
				// indices still line up.
				sheets = append(sheets, geom.Geometry{})
				continue
			}
			l := geom.Line{
				P1: geom.Point{X: op.Args[0], Y: op.Args[1]},
				P2: geom.Point{X: op.Args[2], Y: op.Args[3]},
			}
			if l.Degenerate() {
				issues = append(issues, Issue{line, "fold line is degenerate"})
			} else if !checker.SafeFold(l, sheets[op.Sheet]) {
				issues = append(issues, Issue{line, fmt.Sprintf("fold line ambiguously close to sheet %d features", op.Sheet)})
			}
			sheets = append(sheets, sheets[op.Sheet].Fold(l))
		}
	}

	for idx, q := range c.Points {
		line := 1 + c.Sheets + idx + 1
		if q.Sheet < 1 || q.Sheet > c.Sheets {
			issues = append(issues, Issue{line, fmt.Sprintf("query sheet %d out of range [1,%d]", q.Sheet, c.Sheets)})
			continue
		}
		if !checker.SafePoint(q.P, sheets[q.Sheet]) {
			issues = append(issues, Issue{line, fmt.Sprintf("query point ambiguously close to sheet %d features", q.Sheet)})
		}
	}

	return issues
}
