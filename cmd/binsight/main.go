package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"binsight/internal/classifier"
	"binsight/internal/config"
	"binsight/internal/db"
	"binsight/internal/domain"
	"binsight/internal/engine"
	"binsight/internal/mailer"
	"binsight/internal/migrate"
	"binsight/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "binsight",
	Short: "Binsight CLI",
	Long: `Binsight is the backend of a waste sorting station.
The station photographs each item, asks the vision model which bin it
belongs in, and reports where the user actually threw it. Binsight
records every disposal, keeps per-bin totals and ratios, and emails an
admin when a bin reports full.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BINSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(disposalCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage binsight.yml",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var stationID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(stationID)), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&stationID, "station-id", "station-1", "station identifier")
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Load(viper.GetString("workspace"))
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(db.Config{Workspace: viper.GetString("workspace")})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func adminCmd() *cobra.Command {
	adm := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	adm.AddCommand(adminCreateCmd())
	adm.AddCommand(adminListCmd())
	return adm
}

func adminCreateCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BINSIGHT_ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password or BINSIGHT_ADMIN_PASSWORD required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				a, err := e.CreateAdmin(ctx, username, email, password)
				if err != nil {
					return err
				}
				a.PasswordHash = ""
				return printJSONOrTable(a)
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "alert email address")
	cmd.Flags().StringVar(&password, "password", "", "password (or BINSIGHT_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func adminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				admins, err := e.ListAdmins(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					for i := range admins {
						admins[i].PasswordHash = ""
					}
					return printJSON(admins)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Username", "Email", "Created"})
				for _, a := range admins {
					tw.AppendRow(table.Row{a.ID, a.Username, a.Email, a.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func disposalCmd() *cobra.Command {
	d := &cobra.Command{
		Use:   "disposal",
		Short: "Record and inspect disposals",
	}
	d.AddCommand(disposalRecordCmd())
	d.AddCommand(disposalListCmd())
	d.AddCommand(disposalShowCmd())
	return d
}

func disposalRecordCmd() *cobra.Command {
	var analyzed, bin string
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one disposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := domain.ParseAnalyzedCategory(analyzed)
			if err != nil {
				return err
			}
			b, err := domain.ParseBinCategory(bin)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				view, err := e.RecordDisposal(ctx, a, b)
				if err != nil {
					return err
				}
				return printJSONOrTable(view)
			})
		},
	}
	cmd.Flags().StringVar(&analyzed, "analyzed", "", "classifier category (compost|recyclage|poubelle|autre|erreur)")
	cmd.Flags().StringVar(&bin, "bin", "", "bin the item went into (compost|recyclage|poubelle|autre)")
	_ = cmd.MarkFlagRequired("analyzed")
	_ = cmd.MarkFlagRequired("bin")
	return cmd
}

func disposalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List disposals, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				views, err := e.ListDisposals(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(views)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Analyzed", "Bin", "Disposed at"})
				for _, v := range views {
					if v == nil {
						continue
					}
					tw.AppendRow(table.Row{v.WasteItemID, v.AnalyzedCategory, v.BinCategory, v.DisposedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func disposalShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <waste-item-id>",
		Short: "Show one disposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				view, err := e.GetView(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(view)
			})
		},
	}
	return cmd
}

func statsCmd() *cobra.Command {
	st := &cobra.Command{
		Use:   "stats",
		Short: "Per-bin totals and ratios",
	}
	st.AddCommand(statsListCmd())
	st.AddCommand(statsRecountCmd())
	return st
}

func statsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				stats, err := e.ListStatistics(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(stats)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Bin", "Total", "Ratio %"})
				for _, s := range stats {
					tw.AppendRow(table.Row{s.BinCategory, s.Total, fmt.Sprintf("%.2f", s.Ratio)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func statsRecountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recount <bin>",
		Short: "Recount one bin and refresh every ratio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := domain.ParseBinCategory(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.BumpCategoryCount(ctx, bin)
				if err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	return cmd
}

func notifyCmd() *cobra.Command {
	n := &cobra.Command{
		Use:   "notify",
		Short: "Bin fill alerts",
	}
	n.AddCommand(notifyCreateCmd())
	n.AddCommand(notifyListCmd())
	n.AddCommand(notifySetFullCmd())
	return n
}

func notifyCreateCmd() *cobra.Command {
	var bin, adminID string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Track fill alerts for a bin",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := domain.ParseBinCategory(bin)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				n, err := e.CreateNotification(ctx, b, adminID)
				if err != nil {
					return err
				}
				return printJSONOrTable(n)
			})
		},
	}
	cmd.Flags().StringVar(&bin, "bin", "", "bin category")
	cmd.Flags().StringVar(&adminID, "admin", "", "admin id")
	_ = cmd.MarkFlagRequired("bin")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}

func notifyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bin fill trackers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				notifs, err := e.ListNotifications(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(notifs)
			})
		},
	}
}

func notifySetFullCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "set-full <bin>",
		Short: "Report a bin's fill state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := domain.ParseBinCategory(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				n, err := e.SetBinFull(ctx, bin, full)
				if err != nil {
					return err
				}
				return printJSONOrTable(n)
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", true, "whether the bin is full")
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				events, err := e.Repo.LatestEvents(ctx, n, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if cfg == nil {
				cfg = config.Default("station-1")
			}
			e := engine.New(conn, cfg)
			if cfg.Mail.Host != "" {
				m, err := mailer.New(cfg, os.Getenv("BINSIGHT_SMTP_PASSWORD"))
				if err != nil {
					return err
				}
				e.Mail = m
			}
			authCfg := server.AuthConfig{JWTSecret: os.Getenv("BINSIGHT_JWT_SECRET")}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("BINSIGHT_JWT_SECRET is required for bearer auth")
			}
			var cls server.ImageClassifier
			if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
				cls = classifier.New(key,
					classifier.WithModel(cfg.Classifier.Model),
					classifier.WithMaxTokens(cfg.Classifier.MaxTokens),
				)
			} else {
				fmt.Println("ANTHROPIC_API_KEY not set; image classification disabled")
			}
			handler, err := server.New(server.Config{Engine: e, Classifier: cls, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Binsight API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	return cmd
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = config.Default("station-1")
	}
	return fn(ctx, engine.New(conn, cfg))
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
