package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/triageon/triageon/internal/config"
	"github.com/triageon/triageon/internal/domain/prediction"
	"github.com/triageon/triageon/internal/domain/triage"
	"github.com/triageon/triageon/internal/scoring"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "triageon",
		Short:        "Clinical risk scoring and triage API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file read before the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(modelsCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scoring API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return runServer(envFile)
		},
	}
}

// cliEnv loads config and a stderr logger for the offline commands.
func cliEnv(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, newLogger(cfg, cmd.ErrOrStderr()), nil
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a record without starting the server",
	}

	var file string
	triageCmd := &cobra.Command{
		Use:   "triage",
		Short: "Run the triage scorer on a JSON record (--file - reads stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := cliEnv(cmd)
			if err != nil {
				return err
			}
			rec, err := readRecord(cmd, file)
			if err != nil {
				return err
			}
			resp, err := triage.NewService(logger).Triage(rec)
			if err != nil {
				var fe *scoring.FieldError
				if errors.As(err, &fe) {
					if perr := printJSON(cmd.OutOrStdout(), triage.ValidationError{
						Message: fe.Error(),
						Field:   fe.Field,
						Reason:  fe.Reason,
					}); perr != nil {
						return perr
					}
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	triageCmd.Flags().StringVar(&file, "file", "-", "path to a JSON record, or - for stdin")
	cmd.AddCommand(triageCmd)

	cmd.AddCommand(stageCmd("bp", "Stage blood pressure", map[string]string{
		"systolic":  "systolic_bp",
		"diastolic": "diastolic_bp",
	}, func(svc *prediction.Service, rec scoring.VitalRecord) scoring.Evaluation {
		return svc.EvaluateHypertension(rec)
	}))
	cmd.AddCommand(stageCmd("fever", "Stage body temperature", map[string]string{
		"temperature": "temperature",
	}, func(svc *prediction.Service, rec scoring.VitalRecord) scoring.Evaluation {
		return svc.EvaluateInfection(rec)
	}))
	cmd.AddCommand(stageCmd("anemia", "Stage hemoglobin", map[string]string{
		"hemoglobin": "hemoglobin",
	}, func(svc *prediction.Service, rec scoring.VitalRecord) scoring.Evaluation {
		return svc.EvaluateAnemia(rec)
	}))
	return cmd
}

// stageCmd builds an evaluate subcommand for a staged classifier. flags maps
// each flag name to the record field it fills. Unset flags stay absent so
// the classifier reports Unknown.
func stageCmd(use, short string, flags map[string]string, eval func(*prediction.Service, scoring.VitalRecord) scoring.Evaluation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := cliEnv(cmd)
			if err != nil {
				return err
			}
			var rec scoring.VitalRecord
			for flag, field := range flags {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					rec.Set(field, v)
				}
			}
			return printJSON(cmd.OutOrStdout(), eval(prediction.NewService(logger), rec))
		},
	}
	for flag, field := range flags {
		cmd.Flags().String(flag, "", fmt.Sprintf("value for %s", field))
	}
	return cmd
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the probability models",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load the configured models and list them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := cliEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := newPredictionService(cfg, logger)
			if err != nil {
				return err
			}
			models := svc.Models()
			if models == nil {
				models = []prediction.ModelInfo{}
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"models": models})
		},
	})
	return cmd
}

func readRecord(cmd *cobra.Command, path string) (scoring.VitalRecord, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return scoring.VitalRecord{}, err
		}
		defer f.Close()
		r = f
	}
	rec, err := scoring.DecodeRecord(r)
	if err != nil {
		return scoring.VitalRecord{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return rec, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
