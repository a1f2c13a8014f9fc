package spanlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/max-chem-eng/spanlog/models"
)

var testTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testEvent(level models.Level, msg string, spans []*models.Span, fields ...models.Field) *models.Event {
	loc := models.Location{Target: "app", File: "main.go", Line: 10}
	return models.NewEvent(level, testTime, 7, loc, msg, fields, spans)
}

type panickyStringer struct{}

func (panickyStringer) String() string { panic("boom") }

func TestFileFormatter_Format(t *testing.T) {
	tests := []struct {
		name  string
		event *models.Event
		want  string
	}{
		{
			name:  "no spans",
			event: testEvent(models.LevelInfo, "Start main process...", nil),
			want:  "[INFO ] 7 2024-05-01 10:00:00.000UTC app(10)\n Start main process...\n",
		},
		{
			name:  "nested spans",
			event: testEvent(models.LevelWarn, "slow", spanChain("outer", "inner"), Int("ms", 1500)),
			want:  "[WARN ] 7 2024-05-01 10:00:00.000UTC app(10)\n... outer -> inner slow ms=1500\n",
		},
		{
			name: "field values",
			event: testEvent(models.LevelError, "failed", nil,
				Err(errors.New("disk full")),
				Bool("retry", false),
				Duration("after", 250*time.Millisecond),
				Any("shape", map[string]int{"w": 2}),
			),
			want: "[ERROR] 7 2024-05-01 10:00:00.000UTC app(10)\n " +
				`failed error="disk full" retry=false after=250ms shape={"w":2}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&FileFormatter{}).Format(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestConsoleFormatter_Plain(t *testing.T) {
	out, err := (&ConsoleFormatter{}).Format(testEvent(models.LevelInfo, "hello", spanChain("outer", "inner"), String("user", "ana")))
	require.NoError(t, err)
	assert.Equal(t, "INFO  2024-05-01 10:00:00.000UTC 7 app(10)\n... outer -> inner\nhello user=\"ana\"\n\n", string(out))

	out, err = (&ConsoleFormatter{}).Format(testEvent(models.LevelDebug, "bare", nil))
	require.NoError(t, err)
	assert.Equal(t, "DEBUG 2024-05-01 10:00:00.000UTC 7 app(10)\n\nbare\n\n", string(out))
}

func TestConsoleFormatter_Colored(t *testing.T) {
	event := testEvent(models.LevelError, "boom", spanChain("job"))
	out, err := (&ConsoleFormatter{ShowColor: true}).Format(event)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "\x1b[31mERROR\x1b[0m "), s)
	assert.Contains(t, s, "\x1b[90m2024-05-01 10:00:00.000UTC\x1b[0m")
	assert.Contains(t, s, "\x1b[90mapp(10)\x1b[0m")

	plain, err := (&ConsoleFormatter{}).Format(event)
	require.NoError(t, err)
	assert.Equal(t, string(plain), ansi.Strip(s))
}

func TestFormatters_AgreeOnSpanChain(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 0, 6).Draw(rt, "names")
		level := rapid.SampledFrom(models.Levels).Draw(rt, "level")
		msg := rapid.StringMatching(`[A-Za-z ]{0,20}`).Draw(rt, "msg")
		event := testEvent(level, msg, spanChain(names...))

		console, err := (&ConsoleFormatter{ShowColor: true}).Format(event)
		require.NoError(rt, err)
		file, err := (&FileFormatter{}).Format(event)
		require.NoError(rt, err)

		consoleLines := strings.Split(ansi.Strip(string(console)), "\n")
		fileLines := strings.SplitN(string(file), "\n", 2)

		chain := RenderSpans(event.Spans())
		assert.Equal(rt, chain, consoleLines[1])
		assert.Equal(rt, chain+" "+msg+"\n", fileLines[1])
		assert.True(rt, strings.HasPrefix(fileLines[0], "["+pad5(level.String())+"] "))
		assert.True(rt, strings.HasPrefix(consoleLines[0], pad5(level.String())+" "))
	})
}

func pad5(s string) string {
	for len(s) < 5 {
		s += " "
	}
	return s
}

func TestFormatters_UnrenderableField(t *testing.T) {
	formatters := map[string]Formatter{
		"console": &ConsoleFormatter{ShowColor: true},
		"file":    &FileFormatter{},
	}
	values := map[string]any{
		"func":     func() {},
		"stringer": panickyStringer{},
	}

	for fname, f := range formatters {
		for vname, v := range values {
			t.Run(fname+"/"+vname, func(t *testing.T) {
				out, err := f.Format(testEvent(models.LevelInfo, "x", nil, Any("bad", v)))
				require.Error(t, err)
				assert.Nil(t, out)
			})
		}
	}
}

func TestWriterSink_FormattingError(t *testing.T) {
	var sb strings.Builder
	sink := NewWriterSink("console", &sb, &FileFormatter{})

	err := sink.Write(testEvent(models.LevelInfo, "x", nil, Any("bad", func() {})))
	var fe *FormattingError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "console", fe.Sink)
	assert.Empty(t, sb.String(), "nothing is written for an unrenderable event")

	require.NoError(t, sink.Write(testEvent(models.LevelInfo, "ok", nil)))
	assert.Equal(t, "[INFO ] 7 2024-05-01 10:00:00.000UTC app(10)\n ok\n", sb.String())
}
