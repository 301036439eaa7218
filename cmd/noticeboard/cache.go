package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"noticeboard/internal/dashboard"
	"noticeboard/pkg/logx"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the routing requirement cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Rebuild the content-type requirement from the current config",
		Long: "clear rebuilds the persisted routing requirement. A running server picks\n" +
			"the new value up on its next config reload.",
		Args: cobra.NoArgs,
		RunE: runCacheClear,
	})
	return cmd
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logx.NewWriter(cmd.ErrOrStderr(), "warn")

	store, cache, err := openCache(cmd, cfg, path, log)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("storage is disabled; the requirement only lives in the server's memory")
	}
	defer store.Close()

	reqID := uuid.NewString()
	req, err := cache.Clear(cmd.Context(), dashboard.ContentTypeSlugs(cfg), "cli", reqID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "requirement: %s\nrequest_id: %s\n", req, reqID)
	return nil
}
