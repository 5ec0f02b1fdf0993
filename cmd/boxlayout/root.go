package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benoitkugler/boxlayout/logger"
	"github.com/benoitkugler/boxlayout/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// config is read from boxlayout.yaml, BOXLAYOUT_* variables and flags,
// in increasing priority.
type config struct {
	Width    float64       `mapstructure:"width"`
	Height   float64       `mapstructure:"height"`
	FontSize float64       `mapstructure:"font-size"`
	Font     string        `mapstructure:"font"`
	Format   string        `mapstructure:"format"`
	PNG      string        `mapstructure:"png"`
	Debug    bool          `mapstructure:"debug"`
	Log      logger.Config `mapstructure:"log"`
}

func (c config) validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("invalid viewport %gx%g", c.Width, c.Height)
	}
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", c.Format)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		cfgFile string
		cfg     config
	)

	root := &cobra.Command{
		Use:           "boxlayout",
		Short:         "Lay out HTML fixtures and inspect the render tree",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(v, cfgFile); err != nil {
				return err
			}
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger.Initialize(cfg.Log, cmd.ErrOrStderr())
			return cfg.validate()
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./boxlayout.yaml)")
	flags.Float64P("width", "w", 800, "available width, in px")
	flags.Float64("height", 0, "viewport height, in px (0 for the content height)")
	flags.Float64("font-size", 0, "font size of the root element, in px")
	flags.String("font", "", "TrueType or OpenType font used to measure text (default is a fixed advance face)")
	flags.StringP("format", "f", "text", "output format: text or json")
	flags.String("png", "", "also draw the outline of the boxes in this PNG file")
	flags.Bool("debug", false, "log every laid out box")
	flags.String("log-level", "warn", "log level")
	flags.String("log-file", "", "rotated log file")

	for _, name := range []string{"width", "height", "font-size", "font", "format", "png", "debug"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.file", flags.Lookup("log-file"))
	def := logger.DefaultConfig()
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	root.AddCommand(newRenderCmd(&cfg), newHitCmd(&cfg), newVersionCmd())
	return root
}

// readConfig loads the config file, if any. A missing default
// file is not an error.
func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("boxlayout")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("BOXLAYOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.VersionString)
		},
	}
}
