package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kasmbridge/internal/security"
	"kasmbridge/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	app, err := bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer app.Close()

	return app.Server.ServeStdio()
}

var sessionsAll bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions created through this bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Initialize(); err != nil {
			return err
		}

		records, err := st.ListSessions(sessionsAll)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KASM ID\tIMAGE\tCREATED\tDESTROYED")
		for _, r := range records {
			destroyed := "-"
			if r.DestroyedAt.Valid {
				destroyed = r.DestroyedAt.Time.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.KasmID, r.Image, r.CreatedAt.Format("2006-01-02 15:04:05"), destroyed)
		}
		return w.Flush()
	},
}

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Initialize(); err != nil {
			return err
		}

		entries, err := st.RecentAudit(auditLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOOL\tKASM ID\tRESULT\tDETAIL")
		for _, e := range entries {
			result := "allowed"
			detail := e.Argument
			if !e.Allowed {
				result = "denied"
				detail = e.Message
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Tool, e.KasmID, result, detail)
		}
		return w.Flush()
	},
}

var (
	checkFileOp  string
	checkWorkdir string
)

var checkCmd = &cobra.Command{
	Use:   "check [command or path]",
	Short: "Check a command or file path against the configured roots without executing it",
	Long: `check runs the security validator offline. With no flags the argument is
treated as a shell command; with --file-op it is treated as a file path and
the given operation (read, write or access) is validated. Exits non-zero on
denial.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}

		validator := security.NewValidator(security.NewRootSet(cfg.AllowedRoots))

		var verdict error
		switch checkFileOp {
		case "":
			verdict = validator.ValidateCommand(args[0], checkWorkdir)
		case "read":
			verdict = validator.ValidateFileOperation(args[0], security.OpRead)
		case "write":
			verdict = validator.ValidateFileOperation(args[0], security.OpWrite)
		case "access":
			verdict = validator.ValidateFileOperation(args[0], security.OpAccess)
		default:
			return fmt.Errorf("unknown file operation %q (want read, write or access)", checkFileOp)
		}

		if verdict != nil {
			fmt.Printf("denied: %v\n", verdict)
			os.Exit(1)
		}
		fmt.Println("allowed")
		return nil
	},
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsAll, "all", false, "Include destroyed sessions")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum number of entries to show")
	checkCmd.Flags().StringVar(&checkFileOp, "file-op", "", "Validate a file path with this operation (read, write, access)")
	checkCmd.Flags().StringVar(&checkWorkdir, "workdir", "", "Working directory for command validation")
}
