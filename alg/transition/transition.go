package transition

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"sbparse/util"
)

// Arc is the arc part of a list-based transition: whether lambda becomes a
// dependent of beta (Left), beta a dependent of lambda (Right), or neither
type Arc byte

// List is the list part of a transition: what happens to the cursors once
// the arc decision is made
type List byte

const (
	Left  Arc = 'L'
	Right Arc = 'R'
	No    Arc = 'N'

	Shift  List = 'S'
	Reduce List = 'R'
	Pass   List = 'P'

	LABEL_DELIM = "-"
)

var (
	ErrBadLabel = errors.New("transition: malformed label")

	NO_SHIFT  = Label{Arc: No, List: Shift}
	NO_REDUCE = Label{Arc: No, List: Reduce}
	NO_PASS   = Label{Arc: No, List: Pass}
)

// Label is a transition of the list-based system:
//
//	LR-x	Left-Reduce	lambda <-x- beta, lambda is reduced, pass
//	LP-x	Left-Pass	lambda <-x- beta, pass
//	RS-x	Right-Shift	lambda -x-> beta, shift
//	RP-x	Right-Pass	lambda -x-> beta, pass
//	NS	No-Shift	shift
//	NR	No-Reduce	lambda is reduced, pass
//	NP	No-Pass		pass
type Label struct {
	Arc    Arc
	List   List
	Deprel string
}

func (l Label) IsArc(a Arc) bool {
	return l.Arc == a
}

func (l Label) IsList(li List) bool {
	return l.List == li
}

func (l Label) Equal(other Label) bool {
	return l == other
}

// Validate checks the arc/list combination and the presence of a relation
func (l Label) Validate() error {
	switch l.Arc {
	case Left:
		if l.List != Reduce && l.List != Pass {
			return fmt.Errorf("%w: left arcs reduce or pass, got %q", ErrBadLabel, l.String())
		}
	case Right:
		if l.List != Shift && l.List != Pass {
			return fmt.Errorf("%w: right arcs shift or pass, got %q", ErrBadLabel, l.String())
		}
	case No:
		if l.List != Shift && l.List != Reduce && l.List != Pass {
			return fmt.Errorf("%w: unknown list operation in %q", ErrBadLabel, l.String())
		}
		if l.Deprel != "" {
			return fmt.Errorf("%w: no-arc transition %q carries a relation", ErrBadLabel, l.String())
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown arc in %q", ErrBadLabel, l.String())
	}
	if l.Deprel == "" {
		return fmt.Errorf("%w: arc transition %q without relation", ErrBadLabel, l.String())
	}
	return nil
}

func (l Label) String() string {
	if l.Deprel == "" {
		return string([]byte{byte(l.Arc), byte(l.List)})
	}
	return string([]byte{byte(l.Arc), byte(l.List)}) + LABEL_DELIM + l.Deprel
}

// ParseLabel reads the String form of a label
func ParseLabel(s string) (Label, error) {
	var l Label
	if len(s) < 2 {
		return l, fmt.Errorf("%w: %q", ErrBadLabel, s)
	}
	l.Arc, l.List = Arc(s[0]), List(s[1])
	if len(s) > 2 {
		if !strings.HasPrefix(s[2:], LABEL_DELIM) {
			return l, fmt.Errorf("%w: %q", ErrBadLabel, s)
		}
		l.Deprel = s[2+len(LABEL_DELIM):]
	}
	if err := l.Validate(); err != nil {
		return l, err
	}
	return l, nil
}

// MustParseLabel is ParseLabel for literals known to be well formed
func MustParseLabel(s string) Label {
	l, err := ParseLabel(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Attribute codes understood by Configuration.Attribute
const (
	ATTR_FORM   byte = 'f'
	ATTR_LEMMA  byte = 'm'
	ATTR_POS    byte = 'p'
	ATTR_POS2   byte = 's'
	ATTR_DEPREL byte = 'd'
)

// Configuration is the read-only view of a parser state handed to a model.
// Lambda is -1 when the left list is exhausted; 0 is the artificial root.
type Configuration interface {
	Len() int
	Lambda() int
	Beta() int
	Reduced(nodeID int) bool
	Head(nodeID int) (head int, exists bool)
	Attribute(nodeID int, attribute byte) (value string, exists bool)
}

// Model scores the transitions available at a configuration. Implementations
// must not mutate the configuration and must be safe for concurrent use.
type Model interface {
	Predict(conf Configuration) (Predictions, error)
}

// Sequence is an ordered record of committed transitions
type Sequence []Label

func (seq Sequence) String() string {
	var buf bytes.Buffer
	w := new(tabwriter.Writer)
	w.Init(&buf, 0, 8, 0, '\t', 0)
	for i, l := range seq {
		w.Write([]byte(fmt.Sprintf("%d\t%v", i, l)))
		if i < len(seq)-1 {
			w.Write([]byte{'\n'})
		}
	}
	w.Flush()
	return buf.String()
}

// SharedTransitions is the length of the common prefix of two sequences
func (seq Sequence) SharedTransitions(other Sequence) int {
	shared := 0
	for i, l := range seq {
		if i >= len(other) || !other[i].Equal(l) {
			break
		}
		shared++
	}
	return shared
}

func (seq Sequence) Equal(otherEq util.Equaler) bool {
	other, ok := otherEq.(Sequence)
	if !ok || len(other) != len(seq) {
		return false
	}
	return seq.SharedTransitions(other) == len(seq)
}

var _ util.Equaler = Sequence{}
