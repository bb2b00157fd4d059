package resolver

import (
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

func logArchiveFetched(archiveHash string, size int) {
	klog.V(3).Infof("fetched archive %s (%s)", archiveHash, humanize.Bytes(uint64(size)))
}

func logIndexSkipped(archiveHash string, err error) {
	klog.Warningf("skipping archive index %s: %v", archiveHash, err)
}

func logInitSummary(archives, entries int, totalBytes int64) {
	klog.Infof("loaded %d archive indexes (%d entries, %s)", archives, entries, humanize.Bytes(uint64(totalBytes)))
}
