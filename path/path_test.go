package path

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootString(t *testing.T) {
	require.Equal(t, "/", Root.String())
	require.True(t, Root.IsRoot())
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{"/", "/a", "/a/b/c", "/a//b/", "//"}
	for _, s := range cases {
		p, err := Parse(s)
		require.NoError(t, err, s)
		q, err := Parse(p.String())
		require.NoError(t, err)
		require.True(t, p.Equal(q), "round trip of %q", s)
	}
}

func TestParseDropsEmptyComponents(t *testing.T) {
	p, err := Parse("/a//b/")
	require.NoError(t, err)
	require.Equal(t, "/a/b", p.String())
}

func TestParseRejectsMissingLeadingSlash(t *testing.T) {
	_, err := Parse("a/b")
	require.Error(t, err)
}

func TestParseRejectsColon(t *testing.T) {
	_, err := Parse("/a:b")
	require.Error(t, err)
}

func TestParseRejectsDotAndDotDotComponents(t *testing.T) {
	for _, s := range []string{"/..", "/../etc/passwd", "/a/../b", "/.", "/a/."} {
		_, err := Parse(s)
		require.Error(t, err, s)
	}
}

func TestNewPathParentAndLast(t *testing.T) {
	p, err := NewPath(Root, "a")
	require.NoError(t, err)
	require.Equal(t, "a", p.Last())
	require.True(t, p.Parent().Equal(Root))

	q, err := NewPath(p, "b")
	require.NoError(t, err)
	require.Equal(t, "b", q.Last())
	require.True(t, q.Parent().Equal(p))
}

func TestNewPathRejectsBadComponent(t *testing.T) {
	for _, c := range []string{"", "a/b", "a:b", ".", ".."} {
		_, err := NewPath(Root, c)
		require.Error(t, err, c)
	}
}

func TestIsSubpathReflexive(t *testing.T) {
	cases := []string{"/", "/a", "/a/b/c"}
	for _, s := range cases {
		p := MustParse(s)
		require.True(t, p.IsSubpath(p))
	}
}

func TestIsSubpath(t *testing.T) {
	root := MustParse("/")
	a := MustParse("/a")
	ab := MustParse("/a/b")
	abc := MustParse("/a/b/c")
	xy := MustParse("/x/y")

	require.True(t, ab.IsSubpath(a))
	require.True(t, abc.IsSubpath(ab))
	require.True(t, abc.IsSubpath(root))
	require.False(t, a.IsSubpath(ab))
	require.False(t, xy.IsSubpath(a))
}

func TestGobDecodeRejectsTraversalComponents(t *testing.T) {
	var p Path
	err := p.GobDecode([]byte("/../etc/passwd"))
	require.Error(t, err, "a forged wire payload naming '..' must not decode into a Path")
}

func TestToFileStaysWithinRoot(t *testing.T) {
	p := MustParse("/a/b/c.txt")
	got := p.ToFile("/srv/data")
	require.Equal(t, "/srv/data/a/b/c.txt", got)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/a/b", 0o755))
	require.NoError(t, os.WriteFile(dir+"/a/b/c.txt", []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(dir+"/top.txt", []byte("hi"), 0o644))

	files, err := ListFiles(dir)
	require.NoError(t, err)

	var got []string
	for _, f := range files {
		got = append(got, f.String())
	}
	require.ElementsMatch(t, []string{"/a/b/c.txt", "/top.txt"}, got)
}

func TestListFilesNotFound(t *testing.T) {
	_, err := ListFiles("/no/such/directory/brisk-test")
	require.Error(t, err)
}

func TestListFilesNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := dir + "/f.txt"
	require.NoError(t, os.WriteFile(file, []byte("hi"), 0o644))
	_, err := ListFiles(file)
	require.Error(t, err)
}
