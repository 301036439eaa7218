package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"noticeboard/internal/app"
	"noticeboard/internal/config"
	"noticeboard/internal/dashboard"
	"noticeboard/internal/notice"
	"noticeboard/internal/routing"
	"noticeboard/internal/storage"
	"noticeboard/pkg/logx"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the dashboard notices once and print them",
		Long: "check evaluates the notices for a single synthetic request. The URL stands in\n" +
			"for the browser address the dashboard would be opened at.",
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
	cmd.Flags().String("url", "", "request URL to evaluate (default: derived from server.addr)")
	cmd.Flags().String("route", routing.Dashboard, "route name to evaluate")
	cmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.Flags().String("fail-on", "", "exit non-zero when the severity reaches info, warning or danger")
	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	rawURL, _ := cmd.Flags().GetString("url")
	route, _ := cmd.Flags().GetString("route")
	jsonMode, _ := cmd.Flags().GetBool("json")
	failOn, _ := cmd.Flags().GetString("fail-on")

	threshold, err := parseSeverity(failOn)
	if err != nil {
		return err
	}

	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logx.NewWriter(cmd.ErrOrStderr(), "warn")

	if rawURL == "" {
		rawURL = defaultCheckURL(cfg)
	}
	req, err := dashboard.RequestFromURL(rawURL, route)
	if err != nil {
		return err
	}

	store, cache, err := openCache(cmd, cfg, path, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	engine := notice.New(notice.WithLogger(log))
	res := engine.Evaluate(dashboard.BuildContext(cfg, path, cache.Known(), req))

	out := cmd.OutOrStdout()
	if jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}

	if threshold > notice.SeverityNone && res.Severity >= threshold {
		return fmt.Errorf("severity %s reached --fail-on %s", res.Severity.Label(), threshold.Label())
	}
	return nil
}

func openCache(cmd *cobra.Command, cfg *config.Config, path string, log logx.Logger) (storage.Store, *routing.Cache, error) {
	store, err := app.OpenStore(cfg, path, log)
	if err != nil {
		return nil, nil, err
	}
	cache := routing.NewCache(store, log)
	if err := cache.Seed(cmd.Context(), dashboard.ContentTypeSlugs(cfg)); err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	return store, cache, nil
}

func defaultCheckURL(cfg *config.Config) string {
	return "http://" + cfg.Server.Addr + cfg.Server.MountPath + cfg.Server.BackendPath + "/"
}

func parseSeverity(s string) (notice.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return notice.SeverityNone, nil
	case "info":
		return notice.SeverityInfo, nil
	case "warning", "warn":
		return notice.SeverityWarning, nil
	case "danger":
		return notice.SeverityDanger, nil
	default:
		return 0, fmt.Errorf("invalid --fail-on %q (want info, warning or danger)", s)
	}
}

var (
	dangerColor  = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	detailColor  = color.New(color.Faint)
)

func severityColor(s notice.Severity) *color.Color {
	switch s {
	case notice.SeverityDanger:
		return dangerColor
	case notice.SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

func printResult(w io.Writer, res notice.Result) {
	if res.Empty() {
		fmt.Fprintln(w, "No notices.")
		return
	}
	for _, n := range res.Notices {
		severityColor(n.Severity).Fprintf(w, "[%s]", strings.ToUpper(n.Severity.Label()))
		fmt.Fprintf(w, " %s\n", plainText(n.Message))
		if n.Detail != "" {
			detailColor.Fprintf(w, "    %s\n", plainText(n.Detail))
		}
	}
}

var markupTag = regexp.MustCompile(`<[^>]*>`)

// plainText strips the notice markup for terminal output.
func plainText(s string) string {
	s = markupTag.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
