package main

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"money-mate/internal/dto"
	"money-mate/internal/service"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import an SMS export for a user",
		Long: `Reads a JSON file holding either an array of {sender, message_body, status, received_at}
objects or a full ingest request, and stores the messages for --user. Messages already
stored are skipped, so an export can be imported again safely.`,
		RunE: runIngest,
	}
	cmd.Flags().String("user", "", "User ID the messages belong to")
	cmd.Flags().String("file", "", "Path to the JSON export ('-' for stdin)")
	cmd.Flags().String("cache", "", "Remember imported files here and skip them on later runs")
	cmd.Flags().Bool("process", false, "Run a processing pass for the user afterwards")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	path, _ := cmd.Flags().GetString("file")
	cachePath, _ := cmd.Flags().GetString("cache")
	process, _ := cmd.Flags().GetBool("process")
	out := cmd.OutOrStdout()

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	var cache *importCache
	hash := fileHash(data)
	if cachePath != "" {
		if cache, err = loadImportCache(cachePath); err != nil {
			return err
		}
		if cache.seen(hash, userID) {
			fmt.Fprintf(out, "%s already imported for %s, skipping\n", path, userID)
			return nil
		}
	}

	req, err := parseExport(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	req.UserID = userID

	a, _, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batch, err := a.Ingestion.Prepare(cmd.Context(), req)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(batch.Received,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Storing messages"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(cmd.ErrOrStderr()) }),
	)
	result, err := a.Ingestion.Commit(cmd.Context(), batch, func(p service.Progress) {
		_ = bar.Set(p.Processed)
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Fprintf(out, "Inserted %d, duplicates %d, skipped %d of %d\n",
		result.Inserted, result.Duplicates, result.Skipped, result.Total)

	if cache != nil {
		cache.record(hash, userID, path)
		if err := cache.save(cachePath); err != nil {
			return err
		}
	}

	if process {
		processed, err := a.Processing.Process(cmd.Context(), service.ProcessRequest{UserID: &batch.UserID})
		if err != nil {
			return err
		}
		printProcessResult(cmd, processed)
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parseExport accepts a bare message array or a full ingest request.
func parseExport(data []byte) (dto.IngestRequest, error) {
	var req dto.IngestRequest
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		err := json.Unmarshal(data, &req.Messages)
		return req, err
	}
	err := json.Unmarshal(data, &req)
	return req, err
}

func fileHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

type importedFile struct {
	Path       string    `json:"path"`
	UserID     string    `json:"user_id"`
	ImportedAt time.Time `json:"imported_at"`
}

// importCache maps "<hash>:<user>" to the import that stored it.
type importCache struct {
	Files map[string]importedFile `json:"files"`
}

func loadImportCache(path string) (*importCache, error) {
	cache := &importCache{Files: make(map[string]importedFile)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache: %w", err)
	}
	if cache.Files == nil {
		cache.Files = make(map[string]importedFile)
	}
	return cache, nil
}

func (c *importCache) seen(hash, userID string) bool {
	_, ok := c.Files[hash+":"+userID]
	return ok
}

func (c *importCache) record(hash, userID, path string) {
	c.Files[hash+":"+userID] = importedFile{Path: path, UserID: userID, ImportedAt: time.Now().UTC()}
}

func (c *importCache) save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
