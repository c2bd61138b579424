package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/audit"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
)

var doctorAuditLines int

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the data root's health and show recent activity",
		RunE:  runDoctor,
	}
	cmd.Flags().IntVar(&doctorAuditLines, "audit", 10, "number of recent audit entries to show, 0 to skip")
	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("data root: %s\n", cfg.DataRoot)

	if err := checkWritable(cfg.DataRoot); err != nil {
		fmt.Printf("  writable: no (%v)\n", err)
	} else {
		fmt.Println("  writable: yes")
	}

	engine := store.New(cfg.DataRoot, nil)
	projects, err := engine.ListProjects(store.ListProjectsInput{Limit: 1000, IncludeArchived: true})
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	fmt.Printf("\nprojects: %d\n", len(projects))
	for _, p := range projects {
		members, _ := engine.ListMembers(p.ProjectID)
		resourceCount := countSubdirs(filepath.Join(cfg.DataRoot, "projects", p.ProjectID, "resources"))
		status := "active"
		if p.Archived {
			status = "archived"
		}
		fmt.Printf("  %-24s %-10s members=%-3d resources=%-3d\n", p.ProjectID, status, len(members), resourceCount)
	}

	if doctorAuditLines > 0 {
		entries, err := audit.New(cfg.DataRoot, logger).Tail(doctorAuditLines)
		if err != nil {
			return fmt.Errorf("reading audit log: %w", err)
		}
		fmt.Printf("\nrecent audit entries (%d):\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %s %-20s actor=%-12s project=%-16s result=%s\n",
				e.Timestamp.Format("15:04:05"), e.Op, e.Actor, e.ProjectID, e.Result)
		}
	}

	return nil
}

func countSubdirs(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, ent := range entries {
		if ent.IsDir() {
			n++
		}
	}
	return n
}

func checkWritable(dataRoot string) error {
	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dataRoot, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
