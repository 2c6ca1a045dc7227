package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/webresume/internal/config"
	"github.com/Zachkp/webresume/internal/store"
)

//nolint:gochecknoglobals // Cobra boilerplate
var importForce bool

//nolint:gochecknoglobals // Cobra boilerplate
var importCmd = &cobra.Command{
	Use:   "import-resume [file]",
	Short: "Seed the database with resume content",
	Long: `Import resume content from a JSON or YAML file, or the built-in resume when
no file is given. Field names follow the REST API (name, location, about,
languages, skills, skills_table, experience, resume_projects, ...).

Nothing is imported when a resume already exists, unless --force is given, in
which case the import becomes the new latest resume.

Example:
  webresume import-resume
  webresume import-resume resume.yaml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importForce, "force", false, "Import even if a resume already exists")
}

func runImport(cmd *cobra.Command, args []string) (err error) {
	log := newLogger()
	cfg := config.Load()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var fields map[string]json.RawMessage
	if len(args) == 1 {
		fields, err = loadResumeFile(args[0])
	} else {
		fields, err = toFields(defaultResume())
	}
	if err != nil {
		return err
	}

	var st *store.Store
	st, err = store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var n int64
	n, err = st.CountResumes(ctx)
	if err != nil {
		return err
	}
	if n > 0 && !importForce {
		fmt.Fprintln(cmd.OutOrStdout(), "A resume already exists in the database. Skipping import (use --force to override).")
		return nil
	}

	var r store.Resume
	r, err = st.CreateResume(ctx, fields)
	if err != nil {
		return err
	}
	log.Info("resume imported", "id", r.ID, "db", cfg.DBPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported resume %d (%s)\n", r.ID, r.Name)
	return nil
}

// seedIfEmpty writes the built-in resume to an empty database.
func seedIfEmpty(ctx context.Context, st *store.Store, log *slog.Logger) error {
	n, err := st.CountResumes(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	fields, err := toFields(defaultResume())
	if err != nil {
		return err
	}
	r, err := st.CreateResume(ctx, fields)
	if err != nil {
		return err
	}
	log.Info("seeded empty database with the built-in resume", "id", r.ID)
	return nil
}

// loadResumeFile decodes a JSON or YAML resume file, chosen by extension.
func loadResumeFile(path string) (fields map[string]json.RawMessage, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume file: %s", path)
		return fields, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		err = yaml.Unmarshal(data, &doc)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse YAML: %s", path)
			return fields, err
		}
		return toFields(doc)
	default:
		err = json.Unmarshal(data, &fields)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse JSON: %s", path)
			return fields, err
		}
		return fields, nil
	}
}

// toFields re-encodes a decoded document field by field.
func toFields(doc map[string]any) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q cannot be encoded as JSON", k)
		}
		fields[k] = b
	}
	return fields, nil
}
