package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level and logger name.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[5]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[5]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("impl", DEBUG, false, NewWriterAppender(notStdout))

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459-0400	INFO	impl	logging/impl_test.go:68	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:45:20.764-0400	INFO	impl	logging/impl_test.go:72	impl infof log`)

	logger.Infow("impl logw", "key", "value")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806-0400	INFO	impl	logging/impl_test.go:76	impl logw	{"key":"value"}`)

	logger.Warnw("BasicStruct", "implOneKey", "1val", "BasicStruct", BasicStruct{1, "alice"})
	assertLogMatches(t, notStdout,
		`2023-10-30T13:20:47.129-0400	WARN	impl	logging/impl_test.go:80	BasicStruct	{"BasicStruct":{"X":1},"implOneKey":"1val"}`)

	logger.Debugw("unpaired", "lonely")
	output, err := notStdout.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	test.That(t, output, test.ShouldContainSubstring, "unpaired log key")
}

func TestLevelFiltering(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Errorf("kept %d", 2)

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("kept").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("kept 2").Len(), test.ShouldEqual, 1)
}

func TestSublogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newImpl("viewer", INFO, true, NewWriterAppender(buf))
	sub := logger.Sublogger("web")
	test.That(t, sub.GetLevel(), test.ShouldEqual, INFO)

	sub.Info("hello")
	test.That(t, buf.String(), test.ShouldContainSubstring, "\tviewer.web\t")

	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.out)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	md, err := json.Marshal(ERROR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(md), test.ShouldEqual, `"error"`)
}

func TestFileAppender(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "viewer.log")
	appender, closer := NewFileAppender(fn)
	logger := NewBlankLogger("file")
	logger.AddAppender(appender)

	logger.Infow("saved frame", "path", "a_c.png")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, closer.Close(), test.ShouldBeNil)

	//nolint:gosec
	data, err := os.ReadFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "saved frame")
	test.That(t, string(data), test.ShouldContainSubstring, `"path":"a_c.png"`)
}

// recordingTB counts Helper calls and keeps logged lines.
type recordingTB struct {
	testing.TB
	helpers int
	lines   []string
}

func (tb *recordingTB) Helper() {
	tb.helpers++
}

func (tb *recordingTB) Log(args ...any) {
	tb.lines = append(tb.lines, strings.TrimSpace(fmt.Sprintln(args...)))
}

func TestTestLoggerMarksHelpers(t *testing.T) {
	tb := &recordingTB{TB: t}
	logger := NewTestLogger(tb)

	logger.Infow("frame", "n", 1)
	// the logging method, emit and the appender all step aside for the caller
	test.That(t, tb.helpers, test.ShouldBeGreaterThanOrEqualTo, 3)
	test.That(t, tb.lines, test.ShouldHaveLength, 1)
	test.That(t, tb.lines[0], test.ShouldContainSubstring, "logging/impl_test.go:")
	test.That(t, tb.lines[0], test.ShouldNotContainSubstring, "impl.go:")

	before := tb.helpers
	logger.Sublogger("viewer").Warn("slow")
	test.That(t, tb.helpers-before, test.ShouldBeGreaterThanOrEqualTo, 3)
	test.That(t, tb.lines[1], test.ShouldContainSubstring, "\tviewer\t")
}
