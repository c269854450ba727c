package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/agentic-research/assetwalk/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// rootOptions is the state shared by every command of one invocation.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	logger  *slog.Logger
	closer  io.Closer
}

func (o *rootOptions) close() {
	if o.closer != nil {
		_ = o.closer.Close()
	}
}

func newRootCmd(o *rootOptions) *cobra.Command {
	o.v = viper.New()

	rootCmd := &cobra.Command{
		Use:   "assetwalk",
		Short: "Validate that every asset reachable from a set of roots resolves",
		Long: `assetwalk loads root assets, follows their references through a schema of
asset types and reports every reference that cannot be resolved or loaded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.initConfig(cmd); err != nil {
				return err
			}
			logger, closer, err := logging.Setup(logging.Options{
				Debug:   o.v.GetBool("debug"),
				NoColor: o.v.GetBool("no-color"),
				LogFile: o.v.GetString("log-file"),
				Console: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			o.logger, o.closer = logger, closer
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "log guard decisions and memoized hits")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this rotating file")

	rootCmd.AddCommand(newValidateCmd(o), newSchemaCmd(o), newReportCmd())
	return rootCmd
}

// initConfig layers flags over ASSETWALK_* environment variables over the
// config file.
func (o *rootOptions) initConfig(cmd *cobra.Command) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", o.cfgFile, err)
		}
	}
	o.v.SetEnvPrefix("ASSETWALK")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()
	if err := o.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// Execute runs the root command and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	o := &rootOptions{}
	err := newRootCmd(o).ExecuteContext(ctx)
	stop()
	o.close()
	if err == nil {
		return
	}

	code := 1
	var exit *ExitError
	if errors.As(err, &exit) {
		code = exit.Code
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
