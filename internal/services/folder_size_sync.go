// Package services holds long-running background workers started from
// main and stopped on shutdown.
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/clouddrive/backend/internal/items"
)

// FolderSizeSyncService periodically recomputes the cached size of
// every folder from the files directly inside it. Folder sizes drift
// when files are moved or deleted concurrently; the sync makes the
// cached values eventually consistent.
type FolderSizeSyncService struct {
	store    items.Store
	interval time.Duration

	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	syncing   bool
}

func NewFolderSizeSyncService(store items.Store, intervalMinutes int) *FolderSizeSyncService {
	if intervalMinutes <= 0 {
		intervalMinutes = 15
	}
	return &FolderSizeSyncService{
		store:    store,
		interval: time.Duration(intervalMinutes) * time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sync loop
func (s *FolderSizeSyncService) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	log.Printf("FolderSizeSyncService started (interval: %v)", s.interval)
}

// Stop stops the sync loop and waits for an in-flight pass to finish
func (s *FolderSizeSyncService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	log.Println("FolderSizeSyncService stopped")
}

func (s *FolderSizeSyncService) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.SyncOnce(context.Background())
		}
	}
}

// SyncOnce performs one full recompute pass. Overlapping passes are
// skipped rather than queued.
func (s *FolderSizeSyncService) SyncOnce(ctx context.Context) {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return
	}
	s.syncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	folders, err := s.store.AllFolders(ctx)
	if err != nil {
		log.Printf("FolderSizeSync: failed to list folders: %v", err)
		return
	}

	updated := 0
	for _, folder := range folders {
		children, err := s.store.Descendants(ctx, folder.ID)
		if err != nil {
			log.Printf("FolderSizeSync: failed to list folder %d contents: %v", folder.ID, err)
			continue
		}

		var size int64
		for _, child := range children {
			size += child.Size
		}

		if size == folder.Size {
			continue
		}
		if err := s.store.SetFolderSize(ctx, folder.ID, size); err != nil {
			log.Printf("FolderSizeSync: failed to update folder %d: %v", folder.ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Printf("FolderSizeSync: updated %d folder sizes", updated)
	}
}
