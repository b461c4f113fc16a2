package knowledge

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestLink_Basic(t *testing.T) {
	l := NewLinker()
	got := l.Link("A black hole bends light.", []string{"black hole", "light"})
	require.Equal(t, "A [[black hole]] bends [[light]].", got)
}

func TestLink_PreservesCase(t *testing.T) {
	l := NewLinker()
	got := l.Link("Black Hole physics", []string{"black hole"})
	require.Equal(t, "[[Black Hole]] physics", got)
}

func TestLink_LongestFirst(t *testing.T) {
	l := NewLinker()
	got := l.Link("the black hole and the hole", []string{"hole", "black hole"})
	require.Equal(t, "the [[black hole]] and the [[hole]]", got)
}

func TestLink_LatinWordBoundary(t *testing.T) {
	l := NewLinker()
	got := l.Link("stars and starship", []string{"star", "stars"})
	require.Equal(t, "[[stars]] and starship", got)
}

func TestLink_HangulParticle(t *testing.T) {
	l := NewLinker()
	got := l.Link("블랙홀의 중력은 강하다", []string{"블랙홀", "중력"})
	require.Equal(t, "[[블랙홀]]의 [[중력]]은 강하다", got)
}

func TestLink_LatinFollowedByHangulParticle(t *testing.T) {
	l := NewLinker()
	got := l.Link("Outer Wilds는 게임이다", []string{"Outer Wilds"})
	require.Equal(t, "[[Outer Wilds]]는 게임이다", got)
}

func TestLink_SkipsExistingLinks(t *testing.T) {
	l := NewLinker()
	got := l.Link("[[black hole]] near a black hole", []string{"black hole", "hole"})
	require.Equal(t, "[[black hole]] near a [[black hole]]", got)
}

func TestLink_DropsShortAndBracketKeywords(t *testing.T) {
	l := NewLinker()
	got := l.Link("a b [x] y", []string{"a", "[x]", ""})
	require.Equal(t, "a b [x] y", got)
}

func TestLink_Idempotent(t *testing.T) {
	l := NewLinker()
	cases := []struct {
		text     string
		keywords []string
	}{
		{"abcK팝 and more", []string{"abc", "K팝"}},
		{"블랙홀의 black hole and holes", []string{"블랙홀", "black hole", "hole", "holes"}},
		{"[[unclosed black hole", []string{"black hole", "unclosed"}},
		{"C++ and C# compilers", []string{"C++", "C#", "compilers"}},
		{"Event horizon, event Horizon, EVENT HORIZON.", []string{"event horizon", "horizon"}},
	}
	for _, tc := range cases {
		once := l.Link(tc.text, tc.keywords)
		twice := l.Link(once, tc.keywords)
		require.Equal(t, once, twice, "text=%q", tc.text)
	}
}

func TestLink_NoKeywords(t *testing.T) {
	require.Equal(t, "text", NewLinker().Link("text", nil))
}

func TestLink_UnlinkedTextKeepsBytes(t *testing.T) {
	l := NewLinker()
	decomposed := norm.NFD.String("은하 사이의 먼지")
	require.Equal(t, decomposed, l.Link(decomposed, []string{"블랙홀", "black hole"}))
	// keyword present in the text but only inside an existing link
	linked := norm.NFD.String("[[블랙홀]] 근처")
	require.Equal(t, linked, l.Link(linked, []string{"블랙홀"}))
}

func TestLink_DecomposedInputMatchesAndIsComposed(t *testing.T) {
	l := NewLinker()
	got := l.Link(norm.NFD.String("블랙홀의 중력"), []string{"블랙홀"})
	require.Equal(t, "[[블랙홀]]의 중력", got)
	require.True(t, norm.NFC.IsNormalString(got))
	require.Equal(t, got, l.Link(got, []string{"블랙홀"}))
}
