package cmd

import (
	"bytes"
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
	"github.com/veloflow/cruisectl/cmd/global"
	"github.com/veloflow/cruisectl/internal/configuration"
	"github.com/veloflow/cruisectl/internal/control_loop"
	"github.com/veloflow/cruisectl/internal/ui"
	"github.com/veloflow/cruisectl/internal/util"
)

var (
	simulateTicks   int
	simulateTarget  float64
	simulateInitial float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Plot the step response of the configured controller",
	Long: `simulate runs the configured PID loop offline against a unit inertia
plant (the speed changes by the commanded acceleration each tick) and
prints the resulting speed trace. Useful for sanity checking gains
before putting them on the bus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		configuration.LoadConfig()
		applyFlagOverrides(cmd)

		config := configuration.CurrentConfig
		if config.Freq == 0 {
			ui.Warning("No freq configured, simulating at 50 Hz")
			config.Freq = 50
		}
		dt := 1.0 / float64(config.Freq)

		pid := control_loop.NewPidLoop(
			config.P,
			config.D,
			config.I,
			config.ILimit,
			config.OutputLimitMin,
			config.OutputLimitMax,
		)

		ticks := util.Coerce(simulateTicks, 1, 100000)

		speed := simulateInitial
		speeds := make([]float64, 0, ticks)
		for tick := 0; tick < ticks; tick++ {
			control := pid.Step(simulateTarget, speed, dt)
			speed += control * dt
			speeds = append(speeds, speed)
		}

		// print table of the effective settings
		tab := table.Table{
			Headers: []string{"Freq", "P", "D", "I", "I-Limit", "Out-Min", "Out-Max"},
			Rows: [][]string{
				{
					fmt.Sprintf("%d Hz", config.Freq),
					formatOptional(config.P),
					formatOptional(config.D),
					formatOptional(config.I),
					formatOptional(config.ILimit),
					formatOptional(config.OutputLimitMin),
					formatOptional(config.OutputLimitMax),
				},
			},
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			return tableErr
		}
		ui.Printfln(buf.String())

		caption := fmt.Sprintf("speed / tick (target %g)", simulateTarget)
		graph := asciigraph.Plot(speeds, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)

		return nil
	},
}

func formatOptional(value configuration.Optional[float64]) string {
	if !value.IsSet() {
		return "off"
	}
	return fmt.Sprintf("%g", value.Get())
}

func init() {
	simulateCmd.Flags().IntVar(&simulateTicks, "ticks", 250, "number of control ticks to simulate")
	simulateCmd.Flags().Float64Var(&simulateTarget, "target", 10.0, "target speed for the step input")
	simulateCmd.Flags().Float64Var(&simulateInitial, "initial", 0.0, "initial plant speed")
	rootCmd.AddCommand(simulateCmd)
}
