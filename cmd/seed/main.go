package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"medexpenses/database"
	"medexpenses/internal/codec"
	"medexpenses/internal/config"
	"medexpenses/internal/logger"
	"medexpenses/internal/models"
	"medexpenses/internal/repository"
	"medexpenses/internal/services"
	"medexpenses/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seed",
		Short:         "Database tooling for the medical expenses API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to the env file")
	rootCmd.PersistentFlags().Int("workers", utils.DefaultWorkers, "Concurrent inserts")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(fakeCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(keygenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type env struct {
	patients services.PatientService
	users    services.UserService
	seeder   *utils.Seeder
}

// open loads the configuration, connects and migrates. Every subcommand
// except keygen goes through here.
func open(cmd *cobra.Command) (*env, func(), error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	workers, _ := cmd.Flags().GetInt("workers")

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Init("seed", cfg.Env)

	c, err := codec.NewCodec(cfg.FernetKey)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.ConnectDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := database.MigrateDatabase(db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}

	store := repository.NewStore(db)
	e := &env{
		patients: services.NewPatientService(store, c),
		users:    services.NewUserService(store, c),
	}
	e.seeder = utils.NewSeeder(e.patients, e.users, workers)
	return e, closeDB, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and seed the lookup rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			log.Info().Msg("Database schema is up to date")
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import patients and users from .csv or .xlsx files",
		RunE: func(cmd *cobra.Command, args []string) error {
			patientsFile, _ := cmd.Flags().GetString("patients")
			usersFile, _ := cmd.Flags().GetString("users")
			if patientsFile == "" && usersFile == "" {
				return fmt.Errorf("nothing to import, pass --patients and/or --users")
			}

			e, closeDB, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if patientsFile != "" {
				table, err := utils.ReadTable(patientsFile)
				if err != nil {
					return err
				}
				report, err := e.seeder.ImportPatients(cmd.Context(), table)
				if report != nil {
					logReport("patients", patientsFile, report)
				}
				if err != nil {
					return err
				}
			}

			if usersFile != "" {
				table, err := utils.ReadTable(usersFile)
				if err != nil {
					return err
				}
				report, err := e.seeder.ImportUsers(cmd.Context(), table)
				if report != nil {
					logReport("users", usersFile, report)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("patients", "", "Insurance dataset with patient columns")
	cmd.Flags().String("users", "", "Application users with username, password, user_email, role_name")
	return cmd
}

func fakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fake",
		Short: "Insert synthetic patients and users",
		RunE: func(cmd *cobra.Command, args []string) error {
			nPatients, _ := cmd.Flags().GetInt("patients")
			nUsers, _ := cmd.Flags().GetInt("users")
			seed, _ := cmd.Flags().GetUint64("seed")

			e, closeDB, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			gen := utils.NewGenerator(seed)

			if nPatients > 0 {
				regions, smokers, sexes, err := patientLookupIDs(ctx, e.patients)
				if err != nil {
					return err
				}
				report, err := e.seeder.CreatePatients(ctx, gen.Patients(nPatients, regions, smokers, sexes), nil)
				logReport("patients", "generator", report)
				if err != nil {
					return err
				}
			}

			if nUsers > 0 {
				roles, err := e.users.Roles(ctx)
				if err != nil {
					return err
				}
				ids := make([]uint, len(roles))
				for i, r := range roles {
					ids[i] = r.ID
				}
				inputs := gen.Users(nUsers, ids)
				report, err := e.seeder.CreateUsers(ctx, inputs, nil)
				logReport("users", "generator", report)
				if err != nil {
					return err
				}
				printCredentials(cmd, inputs, roles, report)
			}
			return nil
		},
	}
	cmd.Flags().Int("patients", 100, "Number of patients to generate")
	cmd.Flags().Int("users", 10, "Number of users to generate")
	cmd.Flags().Uint64("seed", 0, "Generator seed, 0 for a random run")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the decrypted patient table to an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			e, closeDB, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			n, err := utils.ExportPatients(cmd.Context(), e.patients, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			log.Info().Int("patients", n).Str("file", out).Msg("Export complete")
			return nil
		},
	}
	cmd.Flags().String("out", "patients.xlsx", "Output workbook")
	return cmd
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a fresh FERNET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := codec.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func patientLookupIDs(ctx context.Context, patients services.PatientService) (regions, smokers, sexes []uint, err error) {
	rs, err := patients.Regions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	sm, err := patients.Smokers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	sx, err := patients.Sexes(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, r := range rs {
		regions = append(regions, r.ID)
	}
	for _, s := range sm {
		smokers = append(smokers, s.ID)
	}
	for _, s := range sx {
		sexes = append(sexes, s.ID)
	}
	return regions, smokers, sexes, nil
}

func logReport(kind, source string, r *utils.Report) {
	for _, f := range r.Failed {
		log.Warn().Int("line", f.Line).Err(f.Err).Str("source", source).Msgf("Skipped %s row", kind)
	}
	log.Info().
		Str("source", source).
		Int("total", r.Total).
		Int("imported", r.Imported).
		Int("failed", len(r.Failed)).
		Msgf("Seeded %s", kind)
}

// printCredentials shows the generated passwords once; only digests are stored.
func printCredentials(cmd *cobra.Command, inputs []models.AppUserInput, roles []models.UserRole, r *utils.Report) {
	failed := make(map[int]bool, len(r.Failed))
	for _, f := range r.Failed {
		failed[f.Line] = true
	}
	names := make(map[uint]string, len(roles))
	for _, role := range roles {
		names[role.ID] = role.RoleName
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tPASSWORD\tEMAIL\tROLE")
	for i, in := range inputs {
		if failed[i+1] {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", in.Username, in.Password, in.Email, names[*in.RoleID])
	}
	w.Flush()
}
