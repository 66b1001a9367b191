package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it; tests
// use a stub.
type execIface interface {
	List(ctx context.Context) error
	View(ctx context.Context, id string) error
	Approve(ctx context.Context, id, role string) error
	Reject(ctx context.Context, id, reason string) error
	Refresh(ctx context.Context) error
	Configure(ctx context.Context) error
	Test(ctx context.Context) error
	Auto(ctx context.Context, seconds string) error
	History(ctx context.Context) error
	Export(ctx context.Context, path string) error
	Clear(ctx context.Context) error
}

const helpText = `Available commands:
  list | ls                 show pending submissions
  view <id>                 show every field of a submission
  approve <id> [role]       publish as mentor/mentee and mark approved
  reject <id> [reason...]   mark rejected (asks for a reason when omitted)
  refresh | r               reload submissions
  settings                  enter Netlify token, form id and refresh interval
  test                      test the saved credentials
  auto <seconds>            set the auto-refresh interval (0 disables)
  history                   list past decisions
  export [file]             write approved profiles to a JSON file
  clear                     wipe moderation state and credentials
  exit | quit               leave`

// runREPL reads commands from scanner until EOF or "exit". Command errors are
// already reported by the handlers, so the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mentordesk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "l", "ls", "list":
			_ = a.List(ctx)

		case "view", "show":
			if len(args) < 1 {
				printlnFn("Usage: view <id>")
				continue
			}
			_ = a.View(ctx, args[0])

		case "approve":
			if len(args) < 1 {
				printlnFn("Usage: approve <id> [mentor|mentee]")
				continue
			}
			role := ""
			if len(args) > 1 {
				role = args[1]
			}
			_ = a.Approve(ctx, args[0], role)

		case "reject":
			if len(args) < 1 {
				printlnFn("Usage: reject <id> [reason]")
				continue
			}
			_ = a.Reject(ctx, args[0], strings.Join(args[1:], " "))

		case "r", "refresh":
			_ = a.Refresh(ctx)

		case "settings", "configure":
			_ = a.Configure(ctx)

		case "test":
			_ = a.Test(ctx)

		case "auto":
			if len(args) < 1 {
				printlnFn("Usage: auto <seconds>")
				continue
			}
			_ = a.Auto(ctx, args[0])

		case "history":
			_ = a.History(ctx)

		case "export":
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			_ = a.Export(ctx, path)

		case "clear":
			_ = a.Clear(ctx)

		case "exit", "quit", "q":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
