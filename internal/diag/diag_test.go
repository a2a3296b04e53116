package diag

import (
	"testing"

	"github.com/patakha-lang/patakha/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestSinkOrdering(t *testing.T) {
	s := NewSink()
	s.Errorf(token.Position{File: "b.bhai", Line: 2, Column: 1, Offset: 10}, "second file error")
	s.Errorf(token.Position{File: "a.bhai", Line: 5, Column: 1, Offset: 50}, "later offset, earlier file")
	s.Errorf(token.Position{File: "a.bhai", Line: 1, Column: 1, Offset: 0}, "earliest")

	all := s.All()
	assert.Len(t, all, 3)
	assert.Equal(t, "a.bhai", all[0].Pos.File)
	assert.Equal(t, "earliest", all[0].Message)
	assert.Equal(t, "later offset, earlier file", all[1].Message)
	assert.Equal(t, "b.bhai", all[2].Pos.File)
}

func TestSinkHasErrorsIgnoresWarnings(t *testing.T) {
	s := NewSink()
	s.Warningf(token.Position{}, "unused variable x")
	assert.False(t, s.HasErrors())
	s.Errorf(token.Position{}, "undeclared name y")
	assert.True(t, s.HasErrors())
}

func TestFormatIncludesNagLine(t *testing.T) {
	s := NewSink()
	s.Errorf(token.Position{File: "f.bhai", Line: 3, Column: 4}, "type mismatch")
	s.Nag("did you forget a cast?")
	line := Format(s.All()[0], false)
	assert.Equal(t, "f.bhai:3:4: error: type mismatch (did you forget a cast?)", line)
}

func TestInternalDiagnosticTagged(t *testing.T) {
	s := NewSink()
	s.Internal("optimizer", assertErr{"dangling branch target"})
	all := s.All()
	assert.Len(t, all, 1)
	assert.Equal(t, "optimizer", all[0].Stage)
	assert.Contains(t, all[0].Message, "internal compiler error")
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
