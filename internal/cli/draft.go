package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"support-copilot/internal/app"
	"support-copilot/internal/common/config"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/common/observability"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/copilot/pipeline"
)

// ExitBadRequest is returned when the ticket fails validation.
const ExitBadRequest = 2

type draftOptions struct {
	file       string
	output     string
	configPath string
	mock       bool
}

func newDraftCommand() *cobra.Command {
	opts := &draftOptions{}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a draft for a ticket file",
		Example: `  draft-cli draft --file ticket.json
  draft-cli draft --file ticket.yaml --output yaml --mock
  cat ticket.json | draft-cli draft --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "ticket file (.json, .yaml or - for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: configs/config.yaml)")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "use the offline mock generator")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runDraft(cmd *cobra.Command, opts *draftOptions) error {
	if opts.output != "json" && opts.output != "yaml" {
		return fmt.Errorf("unsupported output format %q (want json or yaml)", opts.output)
	}

	body, err := readTicket(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.mock {
		cfg.App.Mode = generation.ModeMock
	}

	log := logger.NewStructured("warn", "console", "stderr")
	generator := generation.NewGenerator(app.GenerationConfig(cfg), log)
	p := pipeline.New(generator, log, observability.NewNoop("draft-cli"))

	draft, stdErr := p.Draft(cmd.Context(), body)
	if stdErr != nil {
		details, _ := json.MarshalIndent(stdErr.ToResponse(), "", "  ")
		fmt.Fprintln(cmd.ErrOrStderr(), string(details))
		return &ExitError{Code: ExitBadRequest, Err: fmt.Errorf("%s: %s", stdErr.Code, stdErr.Message)}
	}

	return writeOutput(cmd.OutOrStdout(), opts.output, draft)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// readTicket returns the ticket as JSON. YAML files are converted so both
// formats go through the same validation.
func readTicket(stdin io.Reader, file string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read ticket: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml ticket: %w", err)
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml ticket: %w", err)
	}
	return converted, nil
}

func writeOutput(w io.Writer, format string, v interface{}) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
