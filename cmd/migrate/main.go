// Package main contains the cli surface of the tool. It uses cobra
// for command wiring; the migration core itself never reads flags or
// environment.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql" // registers the mysql driver for --from-mysql
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"schemamig/internal/migration"
	"schemamig/internal/model"
	"schemamig/internal/modeldiff"
	"schemamig/internal/schemasrc/mysqlintrospect"
	"schemamig/internal/schemasrc/sqlddl"
	schematoml "schemamig/internal/schemasrc/toml"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Schema migration tool – diff two schema models into dialect SQL",
	}

	rootCmd.AddCommand(diffCmd(log))
	rootCmd.AddCommand(validateCmd(log))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func diffCmd(log *logrus.Logger) *cobra.Command {
	var (
		sourcePath string
		targetPath string
		fromMySQL  string
		dialect    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff source against target and print the migration SQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			d, err := migration.ParseDialect(dialect)
			if err != nil {
				return err
			}

			source, err := loadSchema(cmd.Context(), log, sourcePath, fromMySQL)
			if err != nil {
				return fmt.Errorf("load source schema: %w", err)
			}
			target, err := loadSchema(cmd.Context(), log, targetPath, "")
			if err != nil {
				return fmt.Errorf("load target schema: %w", err)
			}

			stmts, err := migration.Generate(source, target, d, modeldiff.Options{})
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"dialect":    d,
				"statements": len(stmts),
			}).Debug("generated migration")

			for _, stmt := range stmts {
				fmt.Fprintln(cmd.OutOrStdout(), stmt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "source schema file (.toml or .sql)")
	cmd.Flags().StringVar(&targetPath, "target", "", "target schema file (.toml or .sql)")
	cmd.Flags().StringVar(&fromMySQL, "from-mysql", "", "introspect the source schema from a MySQL DSN instead of a file")
	cmd.Flags().StringVar(&dialect, "dialect", string(migration.DialectSQLServer), "output dialect (sqlserver or sqlite)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func validateCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Parse a schema file and report whether it is well-formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchemaFile(args[0])
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"entities":  len(schema.Entities),
				"sequences": len(schema.Sequences),
			}).Info("schema is valid")
			return nil
		},
	}
	return cmd
}

// loadSchema resolves one diff input: a live MySQL DSN when given,
// otherwise a schema file. An empty path yields an empty schema, which
// makes `diff --target x.toml` emit the full create script.
func loadSchema(ctx context.Context, log *logrus.Logger, path, mysqlDSN string) (*model.Schema, error) {
	if mysqlDSN != "" {
		db, err := sql.Open("mysql", mysqlDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		return mysqlintrospect.New(log).Introspect(ctx, db)
	}
	if path == "" {
		return &model.Schema{}, nil
	}
	return loadSchemaFile(path)
}

func loadSchemaFile(path string) (*model.Schema, error) {
	if strings.HasSuffix(path, ".sql") {
		return sqlddl.NewParser().ParseFile(path)
	}
	return schematoml.NewParser().ParseFile(path)
}
