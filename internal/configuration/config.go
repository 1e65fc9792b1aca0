package configuration

import (
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/veloflow/cruisectl/internal/ui"
)

type Configuration struct {
	// Bus session identifier, selects the UDP multicast session.
	Cid uint16 `json:"cid"`
	// Control tick frequency in Hz, dt = 1/freq.
	Freq uint32 `json:"freq"`

	// Gains and limits. Each one only contributes to the control value
	// when it was explicitly given, a present zero is not the same as
	// an absent value.
	P              Optional[float64] `json:"p"`
	D              Optional[float64] `json:"d"`
	I              Optional[float64] `json:"i"`
	ILimit         Optional[float64] `json:"iLimit"`
	OutputLimitMin Optional[float64] `json:"outputLimitMin"`
	OutputLimitMax Optional[float64] `json:"outputLimitMax"`

	InputSenderId   uint32 `json:"inputSenderId"`
	ControlSenderId uint32 `json:"controlSenderId"`
	OutputSenderId  uint32 `json:"outputSenderId"`

	Verbose bool `json:"verbose"`

	ErrorRollingWindowSize int `json:"errorRollingWindowSize"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("cruisectl")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/cruisectl/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	// gains and limits deliberately have no defaults, their presence
	// toggles the corresponding controller term
	viper.SetDefault("InputSenderId", 0)
	viper.SetDefault("ControlSenderId", 0)
	viper.SetDefault("OutputSenderId", 0)

	viper.SetDefault("ErrorRollingWindowSize", 50)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9002)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)
}

// LoadConfig decodes the merged configuration sources into CurrentConfig.
// The config file is optional since all controller parameters can be
// passed as command line flags.
func LoadConfig() {
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			ui.Fatal("Error reading config file, %s", err)
		}
	} else {
		ui.Info("Using configuration file at: %s", viper.ConfigFileUsed())
	}

	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			optionalFloatHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
