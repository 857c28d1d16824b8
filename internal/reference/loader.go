package reference

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
)

// Config describes how to run the external COTAHIST generator.
//
// Fields:
//   - Enabled: when false Load returns nil without touching the filesystem.
//   - Interpreter: executable used to run Script (default "Rscript").
//   - Script: generator script path; it receives OutputPath as its only argument.
//   - OutputPath: JSON file the generator writes.
//   - MaxPrice: exported to the generator as MAX_PRECO so it pre-filters rows.
//   - WorkDir: working directory for the generator process.
type Config struct {
	Enabled     bool
	Interpreter string
	Script      string
	OutputPath  string
	MaxPrice    float64
	WorkDir     string
}

// Loader produces the authoritative reference dataset. It never fails: every
// problem degrades to "no reference data" and is logged.
type Loader struct {
	cfg      Config
	lookPath func(file string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
	log      zerolog.Logger
}

// NewLoader builds a Loader for cfg.
func NewLoader(cfg Config) *Loader {
	if cfg.Interpreter == "" {
		cfg.Interpreter = "Rscript"
	}
	return &Loader{
		cfg:      cfg,
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
		log:      logger.Component("reference"),
	}
}

// Load runs the generator (a blocking call without timeout) and parses its
// output. A nil result means the reference dataset is unavailable.
func (l *Loader) Load(ctx context.Context) *models.ReferenceDataset {
	if !l.cfg.Enabled {
		l.log.Info().Msg("reference generator disabled")
		return nil
	}
	if _, err := os.Stat(l.cfg.Script); err != nil {
		l.log.Warn().Str("script", l.cfg.Script).Err(err).Msg("reference script not found")
		return nil
	}
	bin, err := l.lookPath(l.cfg.Interpreter)
	if err != nil {
		l.log.Warn().Str("interpreter", l.cfg.Interpreter).Err(err).Msg("interpreter not found in PATH, continuing without reference data")
		return nil
	}

	if err := l.run(ctx, bin); err != nil {
		return nil
	}
	return l.ReadOutput()
}

func (l *Loader) run(ctx context.Context, bin string) error {
	start := time.Now()
	l.log.Info().Str("script", l.cfg.Script).Str("output", l.cfg.OutputPath).Msg("running reference generator")

	cmd := l.command(ctx, bin, l.cfg.Script, l.cfg.OutputPath)
	cmd.Dir = l.cfg.WorkDir
	cmd.Env = append(os.Environ(), "MAX_PRECO="+strconv.FormatFloat(l.cfg.MaxPrice, 'f', -1, 64))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	sc := bufio.NewScanner(&stdout)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			l.log.Info().Str("line", line).Msg("generator output")
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		ev := l.log.Error().Err(err).Str("stderr", strings.TrimSpace(stderr.String())).Dur("elapsed", time.Since(start))
		if errors.As(err, &exitErr) {
			ev = ev.Int("exit_code", exitErr.ExitCode())
		}
		ev.Msg("reference generator failed")
		return err
	}
	l.log.Info().Dur("elapsed", time.Since(start)).Msg("reference generator finished")
	return nil
}

// ReadOutput parses the generator output file left on disk.
func (l *Loader) ReadOutput() *models.ReferenceDataset {
	data, err := os.ReadFile(l.cfg.OutputPath)
	if err != nil {
		l.log.Error().Str("path", l.cfg.OutputPath).Err(err).Msg("read reference output")
		return nil
	}
	ds, err := Decode(data)
	if err != nil {
		l.log.Error().Str("path", l.cfg.OutputPath).Err(err).Msg("malformed reference output")
		return nil
	}
	l.log.Info().Int("rows", len(ds.Rows)).Int("total", ds.Total).Str("reference_date", ds.ReferenceDate).Msg("reference dataset loaded")
	return ds
}
