package gen

import (
	"fmt"
	"strings"

	"github.com/wojtekmal/foldgen/internal/constants"
	"github.com/wojtekmal/foldgen/internal/geom"
)

// OpKind is the single-letter operation code used in the emitted format.
type OpKind byte

const (
	// OpRect defines a new rectangular sheet: P x1 y1 x2 y2.
	OpRect OpKind = 'P'
	// OpCircle defines a new circular sheet: K x y r.
	OpCircle OpKind = 'K'
	// OpFold folds an existing sheet along a line: Z k px1 py1 px2 py2.
	OpFold OpKind = 'Z'
)

// Op is one accepted sheet-defining operation. Sheet is the fold source
// index and is meaningful only for OpFold; Args are the operation's
// coordinates in emission order.
type Op struct {
	Kind  OpKind
	Sheet int
	Args  []float64
}

// String renders the operation as one line of the test format, with
// coordinates at fixed precision.
func (op Op) String() string {
	var sb strings.Builder
	sb.WriteByte(byte(op.Kind))
	if op.Kind == OpFold {
		fmt.Fprintf(&sb, " %d", op.Sheet)
	}
	for _, a := range op.Args {
		fmt.Fprintf(&sb, " %.*f", constants.CoordPrecision, a)
	}
	return sb.String()
}

// Query asks how a point relates to sheet Sheet. Generation only
// guarantees the question is well posed; answering it is the judge's job.
type Query struct {
	Sheet int
	P     geom.Point
}

// String renders the query as one line of the test format.
func (q Query) String() string {
	return fmt.Sprintf("%d %.*f %.*f",
		q.Sheet, constants.CoordPrecision, q.P.X, constants.CoordPrecision, q.P.Y)
}
