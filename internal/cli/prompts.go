package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"screener/internal/evaluate"
)

func (a *app) promptsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List prompt templates",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			for _, info := range store.ListPrompts() {
				marker := " "
				if info.Active {
					marker = "*"
				}
				fmt.Fprintf(a.stdout, "%s %-20s %s\n", marker, info.Name, info.Description)
			}
			return nil
		},
	}
}

func (a *app) usePromptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use-prompt NAME",
		Short: "Switch the active prompt template",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			if err := store.SetActivePrompt(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Active prompt: %s\n", args[0])
			return nil
		},
	}
}

func (a *app) addPromptCommand() *cobra.Command {
	var (
		description string
		textFile    string
		fields      []string
	)
	cmd := &cobra.Command{
		Use:   "add-prompt NAME",
		Short: "Register a new prompt template",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if textFile == "" {
				return usagef("--text-file is required")
			}
			data, err := os.ReadFile(textFile)
			if err != nil {
				return fmt.Errorf("read prompt text: %w", err)
			}
			text := string(data)
			if unknown := unknownSlots(text); len(unknown) > 0 {
				return usagef("prompt uses unknown placeholders: %s", strings.Join(unknown, ", "))
			}
			schema := map[string]bool{}
			for _, field := range fields {
				if field = strings.TrimSpace(field); field != "" {
					schema[field] = true
				}
			}
			if len(schema) == 0 {
				return usagef("--fields needs at least one field")
			}
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			if err := store.AddPrompt(args[0], description, text, schema); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Added prompt %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "one-line description")
	cmd.Flags().StringVar(&textFile, "text-file", "", "file holding the prompt text")
	cmd.Flags().StringSliceVar(&fields, "fields", []string{"name", "title", "company", "location", "priority", "priority_reasoning"}, "output fields the prompt asks for")
	return cmd
}

// unknownSlots lists placeholders other than the ones evaluation fills.
func unknownSlots(text string) []string {
	var unknown []string
	for _, slot := range evaluate.Slots(text) {
		if slot != "profile" && slot != "company_info" {
			unknown = append(unknown, "{"+slot+"}")
		}
	}
	return unknown
}
