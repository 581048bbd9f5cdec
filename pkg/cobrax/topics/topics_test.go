package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"help/dry-run.txt":          {Data: []byte("Information about dry-run mode")},
		"help/option-workspace.txt": {Data: []byte("Workspace flag")},
		"help/architecture.md":      {Data: []byte("# Architecture\n\nPipeline stages")},
		"help/config.txxt":          {Data: []byte("Configuration Guide")},
		"help/ignore.json":          {Data: []byte("ignored")},
		"help/advanced/plugins.txt": {Data: []byte("Plugin help")},
	}
}

func TestTopicManager_ScanTopics(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(testFS(), "help")
		require.NoError(t, tm.scanTopics())

		assert.Equal(t, []string{"architecture", "dry-run", "option-workspace", "plugins"}, tm.ListTopics())
		topic, ok := tm.GetTopic("architecture")
		require.True(t, ok)
		assert.Equal(t, "# Architecture\n\nPipeline stages", topic.Content)
		assert.Equal(t, "help/architecture.md", topic.FilePath)
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(testFS(), "help", Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.scanTopics())
		assert.Equal(t, []string{"config"}, tm.ListTopics())
	})

	t.Run("missing root", func(t *testing.T) {
		tm := New(testFS(), "nope")
		require.NoError(t, tm.scanTopics())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestTopicManager_GetTopic(t *testing.T) {
	tm := New(testFS(), "help")
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{query: "dry-run", want: "dry-run", found: true},
		{query: "--dry-run", want: "dry-run", found: true},
		{query: "--workspace", want: "option-workspace", found: true},
		{query: "-workspace", want: "option-workspace", found: true},
		{query: "missing", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			topic, ok := tm.GetTopic(tt.query)
			assert.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, topic.Name)
			}
		})
	}
}

func TestPrintTopicList(t *testing.T) {
	tm := New(testFS(), "help")
	require.NoError(t, tm.scanTopics())

	var buf bytes.Buffer
	tm.PrintTopicList(&buf, "app")
	out := buf.String()
	assert.Contains(t, out, "General topics:\n  architecture\n  dry-run\n  plugins\n")
	assert.Contains(t, out, "Option topics:\n  --workspace\n")
	assert.Contains(t, out, "'app help <topic>'")

	empty := New(fstest.MapFS{}, "help")
	buf.Reset()
	empty.PrintTopicList(&buf, "app")
	assert.Equal(t, "No help topics available.\n", buf.String())
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	rootCmd := &cobra.Command{Use: "testapp", Short: "Test application"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})
	_, err := Initialize(rootCmd, testFS(), "help")
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	return rootCmd, &out
}

func TestInitialize_HelpCommand(t *testing.T) {
	rootCmd, _ := newRoot(t)
	helpCmd, _, err := rootCmd.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help [command or topic]", helpCmd.Use)
}

func TestIntegration_HelpTopic(t *testing.T) {
	rootCmd, out := newRoot(t)
	rootCmd.SetArgs([]string{"help", "dry-run"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Information about dry-run mode", out.String())
}

func TestIntegration_HelpTopics(t *testing.T) {
	rootCmd, out := newRoot(t)
	rootCmd.SetArgs([]string{"help", "topics"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Available help topics:")
}

func TestIntegration_HelpCommandFallsBack(t *testing.T) {
	rootCmd, out := newRoot(t)
	rootCmd.SetArgs([]string{"help", "build"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Build something")
}

func TestGlamourRenderer(t *testing.T) {
	r := NewGlamourRenderer(true)
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))

	rendered := r.Render("# Title\n\nBody text", ".md")
	assert.Contains(t, rendered, "Title")
	assert.Contains(t, rendered, "Body text")
}

func TestRender_DefaultRendererIsVerbatim(t *testing.T) {
	tm := New(testFS(), "help")
	require.NoError(t, tm.scanTopics())

	topic, ok := tm.GetTopic("architecture")
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, tm.Render(&buf, topic))
	assert.Equal(t, "# Architecture\n\nPipeline stages", buf.String())
}
