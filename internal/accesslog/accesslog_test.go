package accesslog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFormat(t *testing.T) {
	e := Entry{
		Timestamp: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		WorkerID:  2,
		Method:    "GET",
		Path:      "/index.html",
		Status:    200,
	}

	assert.Equal(t, "[2024-03-15 10:30:45] Worker 2 - GET /index.html - Status: 200", e.String())
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	log, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = log.Close() }()

	require.NoError(t, log.Append(Entry{
		Timestamp: time.Now(), WorkerID: 0, Method: "POST", Path: "/up.txt", Status: 201,
	}))
	require.NoError(t, log.Append(Entry{
		Timestamp: time.Now(), WorkerID: 1, Method: "GET", Path: "/up.txt", Status: 200,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "POST /up.txt - Status: 201")
	assert.Contains(t, lines[1], "GET /up.txt - Status: 200")
}

// TestConcurrentAppend checks that lines from concurrent writers never
// interleave: every line in the file must be complete and well-formed.
func TestConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	log, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = log.Close() }()

	const (
		writers = 8
		pereach = 50
	)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < pereach; i++ {
				_ = log.Append(Entry{
					Timestamp: time.Now(),
					WorkerID:  id,
					Method:    "GET",
					Path:      "/file.txt",
					Status:    200,
				})
			}
		}(w)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, writers*pereach)
	for _, line := range lines {
		assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] Worker \d+ - GET /file\.txt - Status: 200$`, line)
	}
}
