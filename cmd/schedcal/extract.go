package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"schedcal/internal/docread"
	"schedcal/internal/extract"
	"schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
)

var icsOut string

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract schedules from local files and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&icsOut, "ics", "", "Also write the events as an iCalendar file to this path")
}

func runExtract(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	orch, err := newOrchestrator(ctx, conf)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}

	docs := make([]extract.Document, 0, len(args))
	for _, path := range args {
		text, err := docread.Decode(path, docread.MediaTypeFor(path))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		docs = append(docs, extract.Document{Name: filepath.Base(path), Text: text})
	}

	res := orch.ProcessBatch(ctx, docs)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if icsOut == "" {
		return nil
	}
	if len(res.Events) == 0 {
		return fmt.Errorf("no events found, %s not written", icsOut)
	}

	export := make([]model.ExportEvent, 0, len(res.Events))
	for _, e := range res.Events {
		export = append(export, e.Export())
	}
	if err := os.WriteFile(icsOut, []byte(ics.Serialize(export, time.Now())), 0o644); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	appLog.Info("calendar written", "path", icsOut, "events", len(export))
	return nil
}
