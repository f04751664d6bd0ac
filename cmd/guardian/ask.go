package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	askLocation  string
	askLifestyle string
	askInterests []string
	askBudget    string
)

var askCmd = &cobra.Command{
	Use:           "ask [question]",
	Short:         "Ask a climate action question",
	Long:          `Answers one question from the knowledge base and prints the cited sources. Profile flags tailor the advice; none are required.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close(ctx)

		profile := &core.Profile{
			Location:   askLocation,
			Lifestyle:  askLifestyle,
			Interests:  askInterests,
			BudgetBand: askBudget,
		}

		answer := app.Advisor.Answer(ctx, strings.Join(args, " "), profile)

		fmt.Println(answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println()
			fmt.Println(ui.TitleStyle.Render("SOURCES"))
			for _, src := range answer.Sources {
				fmt.Println(ui.SourceStyle.Render(fmt.Sprintf("  %s (%s)", src.Title, src.Source)))
			}
		}
		if answer.Degraded {
			fmt.Println()
			fmt.Println(ui.WarnStyle.Render("The answer service was unreachable, this is offline guidance."))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askLocation, "location", "", "where you live, e.g. \"Denver\"")
	askCmd.Flags().StringVar(&askLifestyle, "lifestyle", "", "urban, suburban or rural")
	askCmd.Flags().StringSliceVar(&askInterests, "interest", nil, "focus areas, repeatable (energy, transport, food, water, waste)")
	askCmd.Flags().StringVar(&askBudget, "budget", "", "low, medium or high")
	rootCmd.AddCommand(askCmd)
}
