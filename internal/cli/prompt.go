package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parley-cli/parley/internal/config"
	"github.com/parley-cli/parley/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage prompt templates",
}

var (
	flagPromptText        string
	flagPromptDescription string
)

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadTemplateRegistry()
		if err != nil {
			return err
		}
		templates := registry.List()
		if len(templates) == 0 {
			fmt.Fprintln(os.Stdout, "No templates. Create one with: parley prompt add <name> --text '...'")
			return nil
		}
		for _, t := range templates {
			fmt.Fprintf(os.Stdout, "%s", t.Name)
			if t.Description != "" {
				fmt.Fprintf(os.Stdout, "  -  %s", t.Description)
			}
			fmt.Fprintln(os.Stdout)
		}
		return nil
	},
}

var promptShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one template in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadTemplateRegistry()
		if err != nil {
			return err
		}
		t, err := registry.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Name: %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(os.Stdout, "Description: %s\n", t.Description)
		}
		if len(t.Variables) > 0 {
			fmt.Fprintf(os.Stdout, "Variables: %s\n", strings.Join(t.Variables, ", "))
		}
		fmt.Fprintf(os.Stdout, "Text:\n  %s\n", t.Text)
		return nil
	},
}

var promptAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPromptText == "" {
			return fmt.Errorf("--text is required")
		}
		registry, err := loadTemplateRegistry()
		if err != nil {
			return err
		}
		err = registry.Add(prompt.Template{
			Name:        args[0],
			Description: flagPromptDescription,
			Text:        flagPromptText,
		})
		if err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Template %q created.\n", args[0])
		return nil
	},
}

var promptRenderCmd = &cobra.Command{
	Use:   "render <name>",
	Short: "Render a template with --var values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadTemplateRegistry()
		if err != nil {
			return err
		}
		t, err := registry.Get(args[0])
		if err != nil {
			return err
		}
		vars, err := parseVars(flagVars)
		if err != nil {
			return err
		}
		text, err := t.Render(vars)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, text)
		return nil
	},
}

var promptRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadTemplateRegistry()
		if err != nil {
			return err
		}
		if err := registry.Remove(args[0]); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Template %q removed.\n", args[0])
		return nil
	},
}

func loadTemplateRegistry() (*prompt.Registry, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	path, err := config.TemplatesPath(cfg)
	if err != nil {
		return nil, err
	}
	return prompt.Load(path)
}

func init() {
	promptAddCmd.Flags().StringVar(&flagPromptText, "text", "", "Template text with ${var} placeholders (required)")
	promptAddCmd.Flags().StringVar(&flagPromptDescription, "description", "", "Short description")
	promptRenderCmd.Flags().StringArrayVar(&flagVars, "var", nil, "Template variable (key=value, repeatable)")

	promptCmd.AddCommand(promptListCmd)
	promptCmd.AddCommand(promptShowCmd)
	promptCmd.AddCommand(promptAddCmd)
	promptCmd.AddCommand(promptRenderCmd)
	promptCmd.AddCommand(promptRemoveCmd)
}
