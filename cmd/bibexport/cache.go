// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibexport/internal/cache"
	"github.com/pdiddy/bibexport/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the export cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cached record counts per dialect",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	dialects := make([]string, 0, len(counts))
	for d := range counts {
		dialects = append(dialects, d)
	}
	sort.Strings(dialects)
	for _, d := range dialects {
		fmt.Printf("%-10s %d\n", d, counts[d])
	}
	return nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached records",
	RunE:  runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	dialect, _ := cmd.Flags().GetString("dialect")
	n, err := store.Clear(context.Background(), types.Dialect(dialect))
	if err != nil {
		return err
	}
	fmt.Printf("Cleared %d cached record(s).\n", n)
	return nil
}

func openCache(cmd *cobra.Command) (*cache.Store, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	if dir == "" {
		dir = "cache"
	}
	return cache.Open(dir)
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "cache", "cache directory")
	cacheClearCmd.Flags().String("dialect", "", "clear only one dialect: bibtex or biblatex")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
