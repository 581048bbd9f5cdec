package transpiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/rs/zerolog"
)

// Command runs an external transpiler process. The plan is written as JSON
// to the process stdin and the process runs inside the workspace via
// exec.Cmd.Dir, so the parent's working directory is never touched.
type Command struct {
	Argv   []string
	Env    map[string]string
	Output io.Writer

	logger zerolog.Logger
}

// NewCommand creates a command transpiler for argv
func NewCommand(argv []string, env map[string]string) *Command {
	return &Command{
		Argv:   argv,
		Env:    env,
		Output: io.Discard,
		logger: logging.GetLogger("transpiler.command"),
	}
}

// Transform runs the configured command with the plan on stdin
func (c *Command) Transform(ctx context.Context, workspace string, plan Plan) error {
	if len(c.Argv) == 0 {
		return errors.New(errors.ErrConfiguration, "transpiler command is not configured")
	}
	if err := plan.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid transform plan")
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode transform plan")
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = workspace
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(), c.environ()...)

	var stderr bytes.Buffer
	out := c.Output
	if out == nil {
		out = io.Discard
	}
	cmd.Stdout = out
	cmd.Stderr = io.MultiWriter(&stderr, out)

	c.logger.Debug().
		Str("command", c.Argv[0]).
		Strs("args", c.Argv[1:]).
		Str("workspace", workspace).
		Int("entryPoints", len(plan.EntryPoints)).
		Msg("Running transpiler")

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrTranspile, "transpiler %s failed: %s",
			c.Argv[0], strings.TrimSpace(stderr.String())).
			WithDetail("workspace", workspace)
	}
	return nil
}

func (c *Command) environ() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, c.Env[k]))
	}
	return env
}
