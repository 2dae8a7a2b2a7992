package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/omniscience-ai/omniscience/internal/application/assistant"
	"github.com/omniscience-ai/omniscience/internal/application/runner"
	"github.com/omniscience-ai/omniscience/internal/application/session"
	"github.com/omniscience-ai/omniscience/internal/domain/file"
	"github.com/omniscience-ai/omniscience/internal/domain/terminal"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/linkdir"
	"github.com/omniscience-ai/omniscience/internal/presentation/cli/output"
)

// workspaceFlags holds the flags for the workspace command.
type workspaceFlags struct {
	SessionName string
	LinkDir     string
}

var workspaceOpts workspaceFlags

// NewWorkspaceCmd creates the workspace command for interactive REPL mode.
func NewWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Interactive workspace REPL",
		Long: `Start an interactive workspace session.

Plain input is sent to the assistant on the active chat tab. The
assistant can create, rewrite, and switch files through directives in
its replies.

Special commands:
  /new <type> [name]  - Create a file (chat, code, doc, sheet, slide, whiteboard, note)
  /open <name|id>     - Open a file in a tab and make it active
  /close [name|id]    - Close a tab (active tab when omitted)
  /tabs               - List open tabs
  /files              - List all workspace files
  /show [name|id]     - Print a file's content (active file when omitted)
  /edit <name|id>     - Replace a file's content (end with a single "." line)
  /run [name|id]      - Run a code file through the backend
  /term               - Print the terminal log
  /clear              - Clear the active chat's history
  /save               - Persist the session
  /specialist         - Show the current specialist indicator
  /help               - Show this help
  /exit, /quit        - Leave the workspace

Examples:
  # Start a fresh workspace
  omniscience workspace

  # Resume a saved session
  omniscience workspace --session my-project

  # Mirror a local directory into the workspace
  omniscience workspace --link ./notes`,
		Args: cobra.NoArgs,
		RunE: runWorkspace,
	}

	cmd.Flags().StringVarP(&workspaceOpts.SessionName, "session", "s", "",
		"session name to resume or create (auto-generated if not provided)")
	cmd.Flags().StringVarP(&workspaceOpts.LinkDir, "link", "l", "",
		"local directory to import and keep in sync")

	return cmd
}

// repl bundles everything the loop needs.
type repl struct {
	formatter *output.Formatter
	sess      *session.Session
	assistant *assistant.Service
	runner    *runner.Service
	rl        *readline.Instance
}

func runWorkspace(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	ctx := cmd.Context()

	sess, resumed, err := openSession(ctx, workspaceOpts.SessionName)
	if err != nil {
		return err
	}

	assist, run, err := container.BuildServices(sess)
	if err != nil {
		return fmt.Errorf("could not initialize workspace services: %w (set %s or run 'omniscience init')", err, "OMNISCIENCE_API_KEY")
	}

	linkPath := workspaceOpts.LinkDir
	if linkPath == "" && container.Config().LinkDir.Enabled {
		linkPath = container.Config().LinkDir.Path
	}
	if linkPath != "" {
		syncer, err := linkdir.NewSyncer(sess.Store, container.Logger())
		if err != nil {
			return fmt.Errorf("could not watch linked directory: %w", err)
		}
		defer syncer.Close()
		if err := syncer.Start(ctx, linkPath); err != nil {
			return fmt.Errorf("could not link directory %s: %w", linkPath, err)
		}
		formatter.Info("Linked directory: %s", linkPath)
	}

	if _, err := assistant.EnsureChat(sess); err != nil {
		return err
	}

	verb := "started"
	if resumed {
		verb = "resumed"
	}
	formatter.Header(fmt.Sprintf("Workspace: %s", sess.Name))
	formatter.Item("Session", verb)
	formatter.Item("Files", fmt.Sprintf("%d", len(sess.Store.Files())))
	formatter.Println("")
	formatter.Info("Type a message for the assistant, or /help for commands.")
	formatter.Println("")

	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	r := &repl{
		formatter: formatter,
		sess:      sess,
		assistant: assist,
		runner:    run,
		rl:        rl,
	}

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			exit, err := r.handleCommand(ctx, line)
			if err != nil {
				formatter.Error("%s", err.Error())
				continue
			}
			if exit {
				break
			}
			continue
		}

		r.send(ctx, line)
	}

	saveSession(ctx, sess, formatter)
	formatter.Info("Workspace session ended.")
	return nil
}

// send submits plain input to the assistant on the active chat.
func (r *repl) send(ctx context.Context, input string) {
	spinner := output.NewSpinner(os.Stdout, "thinking...")
	spinner.Start()
	result, err := r.assistant.Send(ctx, input)
	spinner.Stop()

	if err != nil {
		r.formatter.Error("%s", err.Error())
		return
	}

	label := "Assistant"
	if result.Specialist != "" {
		label = result.Specialist
	}
	if result.Failed {
		r.formatter.Warning("%s:", label)
	} else {
		r.formatter.Success("%s:", label)
	}
	r.formatter.Println("%s", result.Reply)
	r.formatter.Println("")
}

// handleCommand handles a slash command. Returns true to leave the loop.
func (r *repl) handleCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		r.printHelp()
		return false, nil

	case "/new":
		if len(args) < 1 {
			return false, fmt.Errorf("usage: /new <type> [name]")
		}
		t, err := file.ParseType(args[0])
		if err != nil {
			return false, err
		}
		name := ""
		if len(args) > 1 {
			name = strings.Join(args[1:], " ")
		}
		f, err := r.sess.Store.CreateFile(t, name, "")
		if err != nil {
			return false, err
		}
		r.formatter.Success("Created %s %q (%s)", f.Type, f.Name, f.ID)
		return false, nil

	case "/open":
		if len(args) < 1 {
			return false, fmt.Errorf("usage: /open <name|id>")
		}
		f, err := r.resolveFile(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		if err := r.sess.Store.OpenTab(f.ID); err != nil {
			return false, err
		}
		r.formatter.Success("Active tab: %s", f.Name)
		return false, nil

	case "/close":
		id := r.sess.Store.ActiveTabID()
		if len(args) > 0 {
			f, err := r.resolveFile(strings.Join(args, " "))
			if err != nil {
				return false, err
			}
			id = f.ID
		}
		if id == "" {
			return false, fmt.Errorf("no tab to close")
		}
		r.sess.Store.CloseTab(id)
		r.formatter.Success("Tab closed")
		return false, nil

	case "/tabs":
		r.printTabs()
		return false, nil

	case "/files":
		r.printFiles()
		return false, nil

	case "/show":
		var f *file.VirtualFile
		var err error
		if len(args) > 0 {
			f, err = r.resolveFile(strings.Join(args, " "))
		} else {
			f, err = r.sess.Store.ActiveFile()
		}
		if err != nil {
			return false, err
		}
		r.formatter.Header(fmt.Sprintf("%s (%s)", f.Name, f.Type))
		r.formatter.Println("%s", f.Content)
		return false, nil

	case "/edit":
		if len(args) < 1 {
			return false, fmt.Errorf("usage: /edit <name|id>")
		}
		f, err := r.resolveFile(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		return false, r.editFile(f)

	case "/run":
		var f *file.VirtualFile
		var err error
		if len(args) > 0 {
			f, err = r.resolveFile(strings.Join(args, " "))
		} else {
			f, err = r.sess.Store.ActiveFile()
		}
		if err != nil {
			return false, err
		}
		r.runFile(ctx, f.ID)
		return false, nil

	case "/term":
		r.printTerminal()
		return false, nil

	case "/clear":
		chatFile, err := r.sess.Store.ActiveChat()
		if err != nil {
			return false, err
		}
		if err := r.sess.Store.UpdateFileContent(chatFile.ID, "[]"); err != nil {
			return false, err
		}
		r.formatter.Success("Chat history cleared")
		return false, nil

	case "/save":
		ctr := GetContainer()
		if ctr == nil || ctr.Sessions() == nil {
			return false, fmt.Errorf("session persistence is disabled")
		}
		if err := ctr.Sessions().Save(ctx, r.sess.Snapshot()); err != nil {
			return false, err
		}
		r.formatter.Success("Session saved as %q", r.sess.Name)
		return false, nil

	case "/specialist":
		if s := r.sess.Specialist(); s != "" {
			r.formatter.Item("Specialist", s)
		} else {
			r.formatter.Info("No specialist indicator yet")
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for help)", command)
	}
}

// resolveFile finds a file by name first, then by id.
func (r *repl) resolveFile(ref string) (*file.VirtualFile, error) {
	if f, err := r.sess.Store.FileByName(ref); err == nil {
		return f, nil
	}
	return r.sess.Store.File(ref)
}

// editFile reads replacement content line by line until a lone ".".
func (r *repl) editFile(f *file.VirtualFile) error {
	r.formatter.Info("Enter new content for %q; finish with a single \".\" line.", f.Name)

	var lines []string
	r.rl.SetPrompt("| ")
	defer r.rl.SetPrompt("> ")

	for {
		line, err := r.rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}

	if err := r.sess.Store.UpdateFileContent(f.ID, strings.Join(lines, "\n")); err != nil {
		return err
	}
	r.formatter.Success("Updated %q", f.Name)
	return nil
}

// runFile runs a code file and prints the resulting terminal entry.
func (r *repl) runFile(ctx context.Context, fileID string) {
	spinner := output.NewSpinner(os.Stdout, "running...")
	spinner.Start()
	entry, err := r.runner.Run(ctx, fileID)
	spinner.Stop()

	if err != nil {
		r.formatter.Error("%s", err.Error())
		return
	}
	switch entry.Kind {
	case terminal.KindError:
		r.formatter.Error("%s", entry.Content)
	default:
		r.formatter.Println("%s", entry.Content)
	}
}

func (r *repl) printTabs() {
	active := r.sess.Store.ActiveTabID()
	ids := r.sess.Store.OpenTabIDs()
	if len(ids) == 0 {
		r.formatter.Info("No open tabs")
		return
	}
	for _, id := range ids {
		f, err := r.sess.Store.File(id)
		if err != nil {
			continue
		}
		marker := " "
		if id == active {
			marker = "*"
		}
		r.formatter.Println("%s %s  %s", marker, r.formatter.Dim(string(f.Type)), f.Name)
	}
}

func (r *repl) printFiles() {
	files := r.sess.Store.Files()
	if len(files) == 0 {
		r.formatter.Info("Workspace is empty")
		return
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, string(f.Type), f.ID})
	}
	r.formatter.Table(output.TableData{
		Headers: []string{"NAME", "TYPE", "ID"},
		Rows:    rows,
	})
}

func (r *repl) printTerminal() {
	entries := r.sess.Terminal.Entries()
	if len(entries) == 0 {
		r.formatter.Info("Terminal log is empty")
		return
	}
	for _, e := range entries {
		prefix := e.Timestamp.Format("15:04:05")
		switch e.Kind {
		case terminal.KindError:
			r.formatter.Println("%s %s", r.formatter.Dim(prefix), r.formatter.Colorize(e.Content, output.ColorRed))
		case terminal.KindInfo:
			r.formatter.Println("%s %s", r.formatter.Dim(prefix), r.formatter.Dim(e.Content))
		default:
			r.formatter.Println("%s %s", r.formatter.Dim(prefix), e.Content)
		}
	}
}

func (r *repl) printHelp() {
	r.formatter.Header("Workspace Commands")
	r.formatter.Item("/new <type> [name]", "Create a file and open it")
	r.formatter.Item("/open <name|id>", "Open a file in a tab")
	r.formatter.Item("/close [name|id]", "Close a tab")
	r.formatter.Item("/tabs", "List open tabs")
	r.formatter.Item("/files", "List all files")
	r.formatter.Item("/show [name|id]", "Print a file's content")
	r.formatter.Item("/edit <name|id>", "Replace a file's content")
	r.formatter.Item("/run [name|id]", "Run a code file via the backend")
	r.formatter.Item("/term", "Print the terminal log")
	r.formatter.Item("/clear", "Clear the active chat")
	r.formatter.Item("/save", "Persist the session")
	r.formatter.Item("/specialist", "Show the specialist indicator")
	r.formatter.Item("/exit, /quit", "Leave the workspace")
	r.formatter.Println("")
}

// openSession resumes a persisted session by name, or creates a new one.
func openSession(ctx context.Context, name string) (*session.Session, bool, error) {
	container := GetContainer()
	if name != "" && container != nil && container.Sessions() != nil {
		snap, err := container.Sessions().GetByName(ctx, name)
		if err == nil {
			sess, rerr := session.Restore(*snap)
			if rerr != nil {
				return nil, false, fmt.Errorf("could not restore session %q: %w", name, rerr)
			}
			return sess, true, nil
		}
	}
	return session.New(name), false, nil
}

// saveSession persists the session on exit when storage is available.
func saveSession(ctx context.Context, sess *session.Session, formatter *output.Formatter) {
	container := GetContainer()
	if container == nil || container.Sessions() == nil {
		return
	}
	if err := container.Sessions().Save(ctx, sess.Snapshot()); err != nil {
		formatter.Warning("Could not save session: %v", err)
		return
	}
	formatter.Info("Session saved as %q", sess.Name)
}
