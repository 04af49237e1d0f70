package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"nutritrack/internal/nutrition"
)

func newGoalsCmd() *cobra.Command {
	var in nutrition.GoalInput
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Print daily calorie and macro targets for a body profile",
		Example: `  nutritrack goals --weight 70 --height 175 --age 25 --sex male \
    --activity moderate --goal maintain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, err := nutrition.CalculateGoals(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(goals)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&in.WeightKg, "weight", 0, "body weight in kg")
	f.Float64Var(&in.HeightCm, "height", 0, "height in cm")
	f.IntVar(&in.Age, "age", 0, "age in years")
	f.StringVar(&in.Sex, "sex", "", "male or female")
	f.StringVar(&in.ActivityLevel, "activity", "moderate", "sedentary, light, moderate, active or very_active")
	f.StringVar(&in.Goal, "goal", "maintain", "lose, maintain or gain")
	return cmd
}
