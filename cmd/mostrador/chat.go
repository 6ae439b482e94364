package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/unanue/mostrador/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Starts an interactive session against the configured backends. Useful for
trying the flow locally; type "salir" or press Ctrl+D to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		assistant, cleanup, err := buildAssistant(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		render := newRenderer(interactive)
		if interactive {
			printBanner()
			fmt.Printf("sesión %s\n\n", sessionID)
		}

		ctx := cmd.Context()

		// Empty first turn triggers the welcome message.
		turn, err := assistant.Handle(ctx, sessionID, "")
		if err != nil {
			return err
		}
		printReplies(render, turn.Replies)

		scanner := bufio.NewScanner(os.Stdin)
		for !turn.Finished {
			if interactive {
				fmt.Print("> ")
			}
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
				return nil
			}

			turn, err = assistant.Handle(ctx, sessionID, text)
			if err != nil {
				return err
			}
			printReplies(render, turn.Replies)
		}
		return nil
	},
}

// newRenderer renders assistant replies as markdown when stdout is a
// terminal, and passes them through untouched otherwise.
func newRenderer(interactive bool) func(string) string {
	if !interactive {
		return func(s string) string { return s + "\n" }
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return func(s string) string { return s + "\n" }
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s + "\n"
		}
		return out
	}
}

func printReplies(render func(string) string, replies []string) {
	for _, reply := range replies {
		fmt.Print(render(reply))
	}
}

func printBanner() {
	p := termenv.ColorProfile()
	title := termenv.String(" mostrador ").Foreground(p.Color("#34d399")).Bold()
	sub := termenv.String("asistente de incidencias de tienda").Foreground(p.Color("#6ee7b7"))
	fmt.Println()
	fmt.Println(title)
	fmt.Println(sub)
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session id to resume (default: new session)")
}
