package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"autoshow/internal/pipeline"
	"autoshow/internal/services"
)

// readURLFile returns one video item per non-blank line of path. Lines whose
// first non-space character is '#' are comments.
func readURLFile(path string) ([]pipeline.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "read urls file", path, err)
	}
	defer f.Close()

	var items []pipeline.Item
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, pipeline.VideoItem(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "batch", "read urls file", path, fmt.Errorf("scan: %w", err))
	}
	return items, nil
}
