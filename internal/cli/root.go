package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"

	// Configuration
	verbose bool
	noColor bool

	// Colors
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)

	// For testing - allows redirecting output
	colorOutput io.Writer = os.Stdout
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "parra",
	Short: "Parra - build and launch mobile apps faster",
	Long: `The Parra CLI bootstraps new iOS projects connected to your Parra
workspace. It handles authentication, app creation, and project generation
so you can go from zero to a running app in minutes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version information
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	rootCmd.AddCommand(
		newAuthCmd(),
		newBootstrapCmd(),
	)
}

// initConfig reads the optional config file and ENV variables if set
func initConfig() {
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(dir + "/parra")
	}
	viper.SetConfigName("parra")
	viper.SetConfigType("yaml")
	_ = viper.ReadInConfig()

	viper.SetEnvPrefix("PARRA")
	viper.AutomaticEnv()
}

// Helper functions for consistent output

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprintln(colorOutput, successColor.Sprintf("✓ "+format, args...))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorColor.Sprintf("✗ "+format, args...))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Fprintln(colorOutput, infoColor.Sprintf("ℹ "+format, args...))
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, warnColor.Sprintf("⚠ "+format, args...))
}

// Debug prints a message only when verbose mode is enabled
func Debug(format string, args ...interface{}) {
	if IsVerbose() {
		fmt.Fprintln(colorOutput, infoColor.Sprintf(format, args...))
	}
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return viper.GetBool("verbose")
}
