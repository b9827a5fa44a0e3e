package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsTrailingSeparator(t *testing.T) {
	assert.Equal(t, "c:/src/main.go", Normalize(`c:\src\main.go\`))
	assert.Equal(t, "/", Normalize("/"))
	assert.Equal(t, "/root", Normalize("/root/"))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	p := `C:\src\tests\UserServiceTests.cs`
	once := Normalize(p)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestFoldKeyLowercasesOnly(t *testing.T) {
	assert.Equal(t, "c:/proj/config.json", FoldKey(`C:\PROJ\Config.json`))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "c:/src/main.go", Join("c:/src", "main.go"))
	assert.Equal(t, "main.go", Join("", "main.go"))
}

func TestSegmentsWindowsVolume(t *testing.T) {
	segs := Segments(`C:\src\tests\UserServiceTests.cs`)
	assert.Equal(t, []string{"C:", "src", "tests", "UserServiceTests.cs"}, segs)
}

func TestSegmentsPosixRoot(t *testing.T) {
	segs := Segments("/home/user/file.txt")
	assert.Equal(t, []string{"/", "home", "user", "file.txt"}, segs)
}

func TestToRelativeInsideRoot(t *testing.T) {
	got := ToRelative("/home/user/project/src/main.go", "/home/user/project")
	assert.Equal(t, "src/main.go", got)
}

func TestToRelativeOutsideRootFallsBackToAbsolute(t *testing.T) {
	got := ToRelative("/other/location/file.go", "/home/user/project")
	assert.Equal(t, "/other/location/file.go", got)
}
