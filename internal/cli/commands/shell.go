package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/querydeck/internal/assist"
	"github.com/leapstack-labs/querydeck/internal/frame"
	"github.com/leapstack-labs/querydeck/internal/session"
)

const (
	shellPrompt     = "querydeck> "
	shellContPrompt = "      ...> "
)

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	Format string
}

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell [files...]",
		Short: "Query data files from the terminal",
		Long: `Load data files into an in-memory DuckDB session and query them.

Files given as arguments are loaded before the prompt appears. Each file
becomes a table named after the file, e.g. "sales 2024.csv" is sales_2024.

When stdin is not a terminal it is run as a script.`,
		Example: `  # Interactive session over two files
  querydeck shell sales.csv customers.xlsx

  # Run a script
  echo 'SELECT count(*) FROM sales;' | querydeck shell sales.csv --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, csv, json, md")
	cmd.Flags().Int("display-limit", 0, "Rows printed per result, 0 for all")

	return cmd
}

func runShell(cmd *cobra.Command, args []string, opts *ShellOptions) error {
	if !validFormat(opts.Format) {
		return fmt.Errorf("unknown format %q (expected table, csv, json or md)", opts.Format)
	}
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	s, err := session.Open(ctx, "shell", cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	sh := newShell(s, cmdCtx.Assistant, cmd.OutOrStdout(), cmd.ErrOrStderr())
	sh.format = opts.Format
	sh.limit = cmdCtx.Cfg.UI.DisplayLimit

	if len(args) > 0 {
		sh.load(ctx, args)
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return sh.runScript(ctx, in)
	}
	return sh.runREPL(ctx)
}

// shell runs dot-commands and SQL against one session.
type shell struct {
	session   *session.Session
	assistant *assist.Assistant
	out       io.Writer
	errOut    io.Writer
	format    string
	limit     int
	readFile  func(string) ([]byte, error)

	pending  strings.Builder
	failures int
}

func newShell(s *session.Session, a *assist.Assistant, out, errOut io.Writer) *shell {
	return &shell{
		session:   s,
		assistant: a,
		out:       out,
		errOut:    errOut,
		format:    "table",
		readFile:  os.ReadFile,
	}
}

func (sh *shell) runREPL(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyPath(),
		AutoComplete:    newShellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(sh.out, "querydeck shell")
	if sh.assistant.Configured() {
		_, _ = fmt.Fprintf(sh.out, "AI assistance: %s\n", sh.assistant.ProviderName())
	}
	_, _ = fmt.Fprintln(sh.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sh.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.pending.Reset()
			rl.SetPrompt(shellPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if sh.feed(ctx, line) {
			return nil
		}
		if sh.pending.Len() > 0 {
			rl.SetPrompt(shellContPrompt)
		} else {
			rl.SetPrompt(shellPrompt)
		}
	}
}

// runScript feeds r line by line. A trailing statement without a semicolon
// still runs. Failed statements are reported and the script continues.
func (sh *shell) runScript(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if sh.feed(ctx, scanner.Text()) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if rest := strings.TrimSpace(sh.pending.String()); rest != "" {
		sh.pending.Reset()
		sh.execute(ctx, rest)
	}
	if sh.failures > 0 {
		return fmt.Errorf("%d statement(s) failed", sh.failures)
	}
	return nil
}

// feed handles one input line and reports whether the shell should exit.
func (sh *shell) feed(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if sh.pending.Len() == 0 {
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			return sh.dot(ctx, trimmed)
		}
	}

	if sh.pending.Len() > 0 {
		sh.pending.WriteString("\n")
	}
	sh.pending.WriteString(line)
	if !strings.HasSuffix(trimmed, ";") {
		return false
	}

	query := strings.TrimSuffix(strings.TrimSpace(sh.pending.String()), ";")
	sh.pending.Reset()
	sh.execute(ctx, query)
	return false
}

func (sh *shell) execute(ctx context.Context, query string) {
	res, err := sh.session.Execute(ctx, query)
	if err != nil {
		sh.fail(err)
		return
	}
	if err := renderResult(sh.out, res, sh.format, sh.limit); err != nil {
		sh.fail(err)
	}
}

func (sh *shell) fail(err error) {
	sh.failures++
	if errors.Is(err, assist.ErrNotConfigured) {
		_, _ = fmt.Fprintf(sh.errOut, "Error: %v (set %s)\n", err, sh.assistant.KeyEnv())
		return
	}
	_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
}

func (sh *shell) dot(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(sh.out)

	case ".load":
		if rest == "" {
			_, _ = fmt.Fprintln(sh.errOut, "Usage: .load <file> [file...]")
			return false
		}
		sh.load(ctx, strings.Fields(rest))

	case ".tables":
		renderTables(sh.out, sh.session.Tables())

	case ".schema":
		summary, err := sh.session.SchemaSummary(ctx)
		if err != nil {
			sh.fail(err)
			return false
		}
		_, _ = fmt.Fprintln(sh.out, summary)

	case ".ask":
		sql, err := sh.session.Draft(ctx, sh.assistant, rest)
		if err != nil {
			sh.fail(err)
			return false
		}
		_, _ = fmt.Fprintf(sh.out, "%s\n\n(run it with .run)\n", sql)

	case ".run":
		sql := sh.session.Editor().SQL
		if strings.TrimSpace(sql) == "" {
			sh.fail(session.ErrEmptyQuery)
			return false
		}
		sh.execute(ctx, sql)

	case ".explain":
		text, err := sh.session.Explain(ctx, sh.assistant, rest)
		if err != nil {
			sh.fail(err)
			return false
		}
		_, _ = fmt.Fprintln(sh.out, text)

	case ".insights":
		text, err := sh.session.Insights(ctx, sh.assistant)
		if err != nil {
			sh.fail(err)
			return false
		}
		_, _ = fmt.Fprintln(sh.out, text)

	case ".export":
		sh.export(rest)

	case ".format":
		if !validFormat(rest) {
			_, _ = fmt.Fprintln(sh.errOut, "Usage: .format table|csv|json|md")
			return false
		}
		sh.format = rest

	case ".clear":
		_, _ = fmt.Fprint(sh.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(sh.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (sh *shell) load(ctx context.Context, paths []string) {
	uploads := make([]session.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := sh.readFile(p)
		if err != nil {
			sh.fail(err)
			continue
		}
		uploads = append(uploads, session.Upload{Name: filepath.Base(p), Data: data})
	}

	report := sh.session.LoadFiles(ctx, uploads)
	for _, e := range report.Entries {
		w := sh.out
		if e.Status == session.LoadFailed || e.Status == session.LoadUnsupported {
			w = sh.errOut
			sh.failures++
		}
		_, _ = fmt.Fprintln(w, e.Message())
	}
}

func (sh *shell) export(path string) {
	if path == "" {
		path = session.ResultFileName
	}
	res := sh.session.LastResult()
	if res == nil {
		sh.fail(session.ErrNoResult)
		return
	}

	f, err := os.Create(path)
	if err != nil {
		sh.fail(err)
		return
	}
	if err := res.WriteCSV(f); err != nil {
		_ = f.Close()
		sh.fail(err)
		return
	}
	if err := f.Close(); err != nil {
		sh.fail(err)
		return
	}
	_, _ = fmt.Fprintf(sh.out, "Wrote %d rows to %s\n", res.RowCount(), path)
}

func validFormat(f string) bool {
	switch f {
	case "table", "csv", "json", "md", "markdown":
		return true
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .load <file...>   Load CSV, XLSX, JSON or Parquet files as tables
  .tables           List loaded tables
  .schema           Show tables with column types
  .ask <request>    Draft SQL for a request (needs an API key)
  .run              Run the drafted SQL
  .explain [sql]    Explain SQL, or the last SQL entered
  .insights         Summarize the last result
  .export [path]    Write the last result as CSV (default: query_results.csv)
  .format <fmt>     Output format: table, csv, json, md
  .clear            Clear the screen
  .quit / .exit     Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completes dot-commands and data file names after .load
`
	_, _ = fmt.Fprintln(w, help)
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "querydeck")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}

// newShellCompleter completes dot-commands and, after .load, data files in
// the working directory.
func newShellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".load", readline.PcItemDynamic(dataFiles)),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".ask"),
		readline.PcItem(".run"),
		readline.PcItem(".explain"),
		readline.PcItem(".insights"),
		readline.PcItem(".export"),
		readline.PcItem(".format",
			readline.PcItem("table"), readline.PcItem("csv"), readline.PcItem("json"), readline.PcItem("md")),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func dataFiles(string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && frame.FormatFor(e.Name()).Supported() {
			names = append(names, e.Name())
		}
	}
	return names
}
