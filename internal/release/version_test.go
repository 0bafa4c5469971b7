package release

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setNow(t *testing.T, ts time.Time) {
	oldNow := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = oldNow })
}

func writeArtifact(t *testing.T, dir, name string, content []byte) string {
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}

func TestVersionFromTag(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "v2.5", expected: "2.5"},
		{input: "2.5", expected: "2.5"},
		{input: "v1.2.3", expected: "1.2.3"},
		{input: "vv7", expected: "7"},
	}
	for _, testCase := range testCases {
		require.Equal(t, testCase.expected, VersionFromTag(testCase.input))
	}
}

func TestCheckTag(t *testing.T) {
	require.NoError(t, CheckTag("1"))
	require.NoError(t, CheckTag("2.5"))
	require.NoError(t, CheckTag("1.2.3"))
	require.ErrorContains(t, CheckTag("1.2.3.4"), "not a numeric version")
	require.ErrorContains(t, CheckTag("latest"), "not a numeric version")
	require.ErrorContains(t, CheckTag("1.2.0-beta"), "pre-release")
}

func TestIsOlder(t *testing.T) {
	require.True(t, IsOlder("1.0.0", "1.2.0"))
	require.False(t, IsOlder("1.2.0", "1.2.0"))
	require.False(t, IsOlder("2.0.0", "1.10.0"))
	require.False(t, IsOlder("1.0.0.0", "2.0.0"))
	require.False(t, IsOlder("1.0.0", "garbage"))
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	checksum, err := Checksum(writeArtifact(t, dir, "plugin.zip", []byte("hello")))
	require.NoError(t, err)
	require.Equal(t, "5d41402abc4b2a76b9719d911017c592", checksum)

	checksum, err = Checksum(writeArtifact(t, dir, "empty.zip", nil))
	require.NoError(t, err)
	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", checksum)

	// no normalization of line endings or whitespace
	checksum, err = Checksum(writeArtifact(t, dir, "crlf.zip", []byte("hello\r\n")))
	require.NoError(t, err)
	require.NotEqual(t, "5d41402abc4b2a76b9719d911017c592", checksum)

	_, err = Checksum(filepath.Join(dir, "missing.zip"))
	require.ErrorContains(t, err, "failed to read artifact")
}

func TestNewEntry(t *testing.T) {
	setNow(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local))
	filePath := writeArtifact(t, t.TempDir(), "plugin.zip", []byte("hello"))

	entry, err := NewEntry(filePath, "2.5", "changes", "owner/repo", "https://github.com")
	require.NoError(t, err)
	require.Equal(t, "2.5.0", entry.Version)
	require.Equal(t, "changes", entry.Changelog)
	require.Equal(t, "10.10.0.0", entry.TargetABI)
	require.Equal(t, "https://github.com/owner/repo/releases/download/v2.5/metashark_2.5.0.zip", entry.SourceURL)
	require.Equal(t, "5d41402abc4b2a76b9719d911017c592", entry.Checksum)
	require.Equal(t, "2024-05-06T07:08:09", entry.Timestamp)

	_, err = NewEntry(filePath+".missing", "2.5", "", "owner/repo", "https://github.com")
	require.Error(t, err)
}

func TestNewManifest(t *testing.T) {
	m := NewManifest("owner/repo", "owner", "https://git.example.com")
	require.Len(t, m, 1)
	require.NoError(t, m.Validate())
	p := m[0]
	require.Equal(t, "9a19103f-16f7-4668-be54-9a1e7a4f7556", p.GUID)
	require.Equal(t, "MetaShark", p.Name)
	require.Equal(t, "owner", p.Owner)
	require.Equal(t, "Metadata", p.Category)
	require.Equal(t, "https://git.example.com/owner/repo/raw/main/doc/logo.png", p.ImageURL)
	require.NotNil(t, p.Versions)
	require.Empty(t, p.Versions)
}
