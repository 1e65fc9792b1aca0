package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/veloflow/cruisectl/cmd/global"
	"github.com/veloflow/cruisectl/internal"
	"github.com/veloflow/cruisectl/internal/configuration"
	"github.com/veloflow/cruisectl/internal/ui"
)

// flag storage for the controller parameters, copied into the active
// configuration only when the flag was explicitly passed
var (
	cid  uint16
	freq uint32

	p              float64
	d              float64
	i              float64
	iLimit         float64
	outputLimitMin float64
	outputLimitMax float64

	inputSenderId   uint32
	controlSenderId uint32
	outputSenderId  uint32
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cruisectl",
	Short: "A PID speed controller on a message bus.",
	Long: `cruisectl listens for ground speed readings and target speed requests
on a session bus and publishes actuation requests computed by a PID
controller at a fixed rate.`,
	Example: "  cruisectl --cid=111 --freq=50 --p=1.0 --d=2.0",
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		printHeader()

		configuration.LoadConfig()
		applyFlagOverrides(cmd)

		if configuration.CurrentConfig.Verbose {
			ui.SetDebugEnabled(true)
		}

		if err := configuration.Validate(); err != nil {
			ui.Error("Config validation error: %v", err)
			_ = cmd.Usage()
			os.Exit(1)
		}

		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/cruisectl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output, logs every accepted input")

	flags := rootCmd.PersistentFlags()
	flags.Uint16Var(&cid, "cid", 0, "bus session identifier")
	flags.Uint32Var(&freq, "freq", 0, "control tick frequency in Hz")
	flags.Float64Var(&p, "p", 0, "proportional gain")
	flags.Float64Var(&d, "d", 0, "derivative gain")
	flags.Float64Var(&i, "i", 0, "integral gain")
	flags.Float64Var(&iLimit, "i-limit", 0, "clamp for the absolute integral error")
	flags.Float64Var(&outputLimitMin, "output-limit-min", 0, "minimum output value")
	flags.Float64Var(&outputLimitMax, "output-limit-max", 0, "maximum output value")
	flags.Uint32Var(&inputSenderId, "input-sender-id", 0, "sender id filter for speed readings")
	flags.Uint32Var(&controlSenderId, "control-sender-id", 0, "sender id filter for target requests")
	flags.Uint32Var(&outputSenderId, "output-sender-id", 0, "sender id stamped on published actuation requests")
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// applyFlagOverrides copies explicitly passed command line flags over the
// values read from the configuration file. The optional gains and limits
// only count as enabled when they were given on the command line or in
// the file, passing a flag with its default value still enables the term.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	config := &configuration.CurrentConfig

	if flags.Changed("cid") {
		config.Cid = cid
	}
	if flags.Changed("freq") {
		config.Freq = freq
	}

	if flags.Changed("p") {
		config.P.SetOverride(p)
	}
	if flags.Changed("d") {
		config.D.SetOverride(d)
	}
	if flags.Changed("i") {
		config.I.SetOverride(i)
	}
	if flags.Changed("i-limit") {
		config.ILimit.SetOverride(iLimit)
	}
	if flags.Changed("output-limit-min") {
		config.OutputLimitMin.SetOverride(outputLimitMin)
	}
	if flags.Changed("output-limit-max") {
		config.OutputLimitMax.SetOverride(outputLimitMax)
	}

	if flags.Changed("input-sender-id") {
		config.InputSenderId = inputSenderId
	}
	if flags.Changed("control-sender-id") {
		config.ControlSenderId = controlSenderId
	}
	if flags.Changed("output-sender-id") {
		config.OutputSenderId = outputSenderId
	}

	if global.Verbose {
		config.Verbose = true
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("cruise", pterm.NewStyle(pterm.FgLightBlue)),
		pterm.NewLettersFromStringWithStyle("ctl", pterm.NewStyle(pterm.FgWhite)),
	).Render()
	if err != nil {
		fmt.Println("cruisectl")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
