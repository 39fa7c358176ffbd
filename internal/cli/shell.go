package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newShellCmd(a *app) *cobra.Command {
	return withStore(&cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one open session",
		Long: `Shell reads commands line by line, for example "contact list" or
"note add --text 'buy milk'". All lines share one session, so undo works
across them. Changes are saved on exit, quit, end of input, or "save".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd)
		},
	})
}

func (a *app) runShell(cmd *cobra.Command) error {
	in, out, errOut := cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()
	interactive := isTerminal(in)

	r := lipgloss.NewRenderer(out)
	prompt := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")).Render("rolodex> ")
	if interactive {
		fmt.Fprintln(out, r.NewStyle().Faint(true).Render(`Type "help" for commands, "exit" to save and leave.`))
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		fields, err := splitLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(errOut, "Error: %s\n", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "exit", "quit":
			return nil
		case "save":
			if err := a.sess.asst.Save(); err != nil {
				fmt.Fprintf(errOut, "Error: %s\n", err)
				continue
			}
			a.sess.dirty = false
			fmt.Fprintln(out, "Saved.")
			continue
		}
		if err := a.runLine(cmd, fields); err != nil {
			fmt.Fprintf(errOut, "Error: %s\n", err)
		}
	}
	return scanner.Err()
}

// runLine executes one shell line through a fresh command tree bound to
// the shared session.
func (a *app) runLine(parent *cobra.Command, args []string) error {
	line := newRootCmd(&app{flags: a.flags, sess: a.sess, inShell: true})
	line.SetArgs(args)
	line.SetIn(parent.InOrStdin())
	line.SetOut(parent.OutOrStdout())
	line.SetErr(parent.ErrOrStderr())
	return line.ExecuteContext(parent.Context())
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitLine splits a shell line into words. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
