package s3mirror

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Stats struct {
	QueueDepth    int
	Enqueued      uint64
	Dropped       uint64
	UploadSuccess uint64
	UploadFail    uint64
}

// Mirror queues local files for upload. Object keys are the file paths
// relative to dataDir, under an optional prefix.
type Mirror struct {
	client  *Client
	dataDir string
	prefix  string
	logger  *log.Logger

	jobs chan string
	wg   sync.WaitGroup

	enqueued      atomic.Uint64
	dropped       atomic.Uint64
	uploadSuccess atomic.Uint64
	uploadFail    atomic.Uint64
}

func NewMirror(client *Client, dataDir, prefix string, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.Default()
	}
	m := &Mirror{
		client:  client,
		dataDir: dataDir,
		prefix:  strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/"),
		logger:  logger,
		jobs:    make(chan string, 256),
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for localPath := range m.jobs {
			m.uploadOne(localPath)
		}
	}()
	return m
}

// Enqueue never blocks the caller; a saturated queue drops the file and
// counts it.
func (m *Mirror) Enqueue(localPath string) {
	if m == nil || m.client == nil {
		return
	}
	m.enqueued.Add(1)
	select {
	case m.jobs <- localPath:
	default:
		m.dropped.Add(1)
		m.logger.Printf("mirror drop local=%s reason=queue_saturated", localPath)
	}
}

func (m *Mirror) Close() {
	if m == nil {
		return
	}
	close(m.jobs)
	m.wg.Wait()
}

func (m *Mirror) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(m.jobs),
		Enqueued:      m.enqueued.Load(),
		Dropped:       m.dropped.Load(),
		UploadSuccess: m.uploadSuccess.Load(),
		UploadFail:    m.uploadFail.Load(),
	}
}

func (m *Mirror) uploadOne(localPath string) {
	key, err := m.objectKey(localPath)
	if err != nil {
		m.logger.Printf("mirror skip local=%s err=%v", localPath, err)
		return
	}
	if err := m.uploadWithRetry(key, localPath); err != nil {
		m.uploadFail.Add(1)
		m.logger.Printf("mirror upload failed key=%s err=%v", key, err)
		return
	}
	m.uploadSuccess.Add(1)
}

func (m *Mirror) uploadWithRetry(key, localPath string) error {
	const maxAttempts = 4
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := m.client.PutFile(ctx, key, localPath)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt*attempt) * 200 * time.Millisecond)
		}
	}
	return lastErr
}

func (m *Mirror) objectKey(localPath string) (string, error) {
	if localPath == "" {
		return "", fmt.Errorf("empty local path")
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(m.dataDir)
	if err != nil {
		return "", err
	}
	absLocal, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absLocal)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside data dir %s", absLocal, absBase)
	}

	if m.prefix != "" {
		return path.Join(m.prefix, rel), nil
	}
	return rel, nil
}
