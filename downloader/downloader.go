// Package downloader pulls a full CDN archive to local storage using
// concurrent ranged GETs, reassembling chunks in order on a pipe so the
// caller can stream the result without buffering the whole archive.
package downloader

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

const (
	defaultChunkSize   = 4 * 1024 * 1024 // 4 MiB, matches typical archive page granularity
	defaultConcurrency = 10
	maxRetries         = 5
	maxInMemoryChunks  = 20 // bounds memory: maxInMemoryChunks * chunkSize
	baseBackoff        = 1 * time.Second
)

// downloadedChunk holds the data from a completed download job.
type downloadedChunk struct {
	index int
	data  []byte
	err   error
}

// chunkJob defines a byte range for a download worker.
type chunkJob struct {
	index int
	start int64
	end   int64
}

// Downloader pulls one CDN archive via concurrent ranged GETs.
type Downloader struct {
	client      *http.Client
	url         string
	fileSize    int64
	chunkSize   int64
	concurrency int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	jobs        chan chunkJob
	results     chan downloadedChunk
	errs        chan error
}

// Reader implements io.ReadCloser over a Downloader's reassembled stream.
type Reader struct {
	d          *Downloader
	pipeReader *io.PipeReader
}

// SetHTTPClient overrides the downloader's HTTP client.
func (d *Downloader) SetHTTPClient(client *http.Client) {
	d.client = client
}

// New prepares a Downloader for the archive at url. It issues a HEAD request
// to confirm range-request support and learn the content length.
func New(ctx context.Context, url string, concurrency int, chunkSize int64) (*Downloader, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	client := &http.Client{
		Transport: &http.Transport{
			ForceAttemptHTTP2:     true,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   100,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build HEAD request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HEAD request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned non-200 status: %s", resp.Status)
	}
	if resp.Header.Get("Accept-Ranges") != "bytes" {
		return nil, fmt.Errorf("server does not support range requests")
	}
	fileSize, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse Content-Length: %w", err)
	}

	dctx, cancel := context.WithCancel(ctx)
	return &Downloader{
		client:      client,
		url:         url,
		fileSize:    fileSize,
		chunkSize:   chunkSize,
		concurrency: concurrency,
		ctx:         dctx,
		cancel:      cancel,
		jobs:        make(chan chunkJob),
		results:     make(chan downloadedChunk, maxInMemoryChunks),
		errs:        make(chan error, 1),
	}, nil
}

// Download starts the worker pool and returns a reader over the
// reassembled, in-order archive bytes.
func (d *Downloader) Download() (io.ReadCloser, error) {
	klog.V(2).Infof("downloading %s: %s in %s chunks, %d workers",
		d.url, humanize.Bytes(uint64(d.fileSize)), humanize.Bytes(uint64(d.chunkSize)), d.concurrency)

	pipeReader, pipeWriter := io.Pipe()

	d.wg.Add(2)
	go d.generateJobs()
	go d.reorder(pipeWriter)

	var workerWg sync.WaitGroup
	for i := 0; i < d.concurrency; i++ {
		workerWg.Add(1)
		go d.worker(&workerWg)
	}
	go func() {
		workerWg.Wait()
		close(d.results)
	}()

	return &Reader{d: d, pipeReader: pipeReader}, nil
}

func (d *Downloader) generateJobs() {
	defer d.wg.Done()
	defer close(d.jobs)
	for offset := int64(0); offset < d.fileSize; offset += d.chunkSize {
		end := offset + d.chunkSize - 1
		if end >= d.fileSize {
			end = d.fileSize - 1
		}
		select {
		case d.jobs <- chunkJob{index: int(offset / d.chunkSize), start: offset, end: end}:
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Downloader) worker(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case job, ok := <-d.jobs:
			if !ok {
				return
			}
			data, err := d.downloadChunk(job)
			select {
			case d.results <- downloadedChunk{index: job.index, data: data, err: err}:
			case <-d.ctx.Done():
				return
			}
		}
	}
}

func (d *Downloader) downloadChunk(job chunkJob) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-d.ctx.Done():
				return nil, d.ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(d.ctx, http.MethodGet, d.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", job.start, job.end))

		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusPartialContent {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status: %s", resp.Status)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (d *Downloader) reorder(pipeWriter *io.PipeWriter) {
	defer d.wg.Done()
	defer pipeWriter.Close()

	buffer := make(map[int]downloadedChunk)
	nextChunkIndex := 0
	totalChunks := int((d.fileSize + d.chunkSize - 1) / d.chunkSize)

	for receivedCount := 0; receivedCount < totalChunks; {
		select {
		case result, ok := <-d.results:
			if !ok {
				d.reportError(fmt.Errorf("download incomplete: results channel closed prematurely"))
				return
			}
			if result.err != nil {
				d.reportError(result.err)
				return
			}
			buffer[result.index] = result
			receivedCount++
		case <-d.ctx.Done():
			return
		}

		for {
			chunk, ok := buffer[nextChunkIndex]
			if !ok {
				break
			}
			if _, err := pipeWriter.Write(chunk.data); err != nil {
				d.reportError(err)
				return
			}
			delete(buffer, nextChunkIndex)
			nextChunkIndex++
		}
	}
}

func (d *Downloader) reportError(err error) {
	select {
	case d.errs <- err:
		d.cancel()
	default:
	}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.pipeReader.Read(p)
}

// Close cancels any in-flight requests and releases resources.
func (r *Reader) Close() error {
	r.d.cancel()
	r.d.wg.Wait()
	return r.pipeReader.Close()
}
