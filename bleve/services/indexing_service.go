package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

type IndexingServiceInterface interface {
	IndexDocument(indexName, id string, document interface{}) error
	BulkIndexDocuments(indexName string, documents map[string]interface{}) error
	DeleteDocument(indexName, id string) error
	SearchIndex(indexName string, q query.Query, size int) (*bleve.SearchResult, error)
	DeleteIndex(indexName string) error
	IndexExists(indexName string) (bool, error)
	DeleteAllIndices() error
	Close() error
}

// IndexingService keeps one open bleve index per name under basePath.
type IndexingService struct {
	mu       sync.Mutex
	indexes  map[string]bleve.Index
	logger   *zap.Logger
	basePath string
}

func NewIndexingService(logger *zap.Logger, basePath string) *IndexingService {
	return &IndexingService{
		indexes:  make(map[string]bleve.Index),
		logger:   logger,
		basePath: basePath,
	}
}

func (s *IndexingService) indexPath(indexName string) string {
	return filepath.Join(s.basePath, indexName+".bleve")
}

func (s *IndexingService) getOrCreateIndex(indexName string) (bleve.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[indexName]; ok {
		return idx, nil
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory %s: %w", s.basePath, err)
	}

	fullPath := s.indexPath(indexName)
	idx, err := bleve.Open(fullPath)
	if err != nil {
		idx, err = bleve.New(fullPath, bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create index %s: %w", fullPath, err)
		}
	}

	s.indexes[indexName] = idx
	return idx, nil
}

func (s *IndexingService) SearchIndex(indexName string, q query.Query, size int) (*bleve.SearchResult, error) {
	idx, err := s.getOrCreateIndex(indexName)
	if err != nil {
		s.logger.Error("Could not get or create index", zap.Error(err))
		return nil, err
	}

	searchRequest := bleve.NewSearchRequestOptions(q, size, 0, false)
	searchResult, err := idx.Search(searchRequest)
	if err != nil {
		s.logger.Error("Search failed", zap.String("index_name", indexName), zap.Error(err))
		return nil, err
	}

	return searchResult, nil
}

// IndexDocument adds or replaces the document stored under id.
func (s *IndexingService) IndexDocument(indexName, id string, document interface{}) error {
	idx, err := s.getOrCreateIndex(indexName)
	if err != nil {
		s.logger.Error("Could not get or create index", zap.Error(err))
		return err
	}

	if err := idx.Index(id, document); err != nil {
		s.logger.Error("Failed to index document", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Debug("Indexed document", zap.String("index_name", indexName), zap.String("id", id))
	return nil
}

func (s *IndexingService) BulkIndexDocuments(indexName string, documents map[string]interface{}) error {
	idx, err := s.getOrCreateIndex(indexName)
	if err != nil {
		s.logger.Error("Could not get or create index", zap.Error(err))
		return err
	}

	batch := idx.NewBatch()
	for id, doc := range documents {
		if err := batch.Index(id, doc); err != nil {
			s.logger.Error("Failed to add doc to batch", zap.String("id", id), zap.Error(err))
			return err
		}
	}

	if err := idx.Batch(batch); err != nil {
		s.logger.Error("Failed to execute batch", zap.Error(err))
		return err
	}

	s.logger.Info("Successfully bulk indexed documents",
		zap.String("index_name", indexName),
		zap.Int("count", len(documents)))
	return nil
}

func (s *IndexingService) DeleteDocument(indexName, id string) error {
	idx, err := s.getOrCreateIndex(indexName)
	if err != nil {
		s.logger.Error("Could not get or create index", zap.Error(err))
		return err
	}

	if err := idx.Delete(id); err != nil {
		s.logger.Error("Failed to delete document", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// DeleteIndex closes the named index if open and removes its files.
func (s *IndexingService) DeleteIndex(indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteIndexLocked(indexName)
}

func (s *IndexingService) deleteIndexLocked(indexName string) error {
	if idx, ok := s.indexes[indexName]; ok {
		if err := idx.Close(); err != nil {
			s.logger.Error("Failed to close index before deletion",
				zap.String("index_name", indexName),
				zap.Error(err))
			return fmt.Errorf("failed to close index: %w", err)
		}
		delete(s.indexes, indexName)
	}

	fullPath := s.indexPath(indexName)
	if err := os.RemoveAll(fullPath); err != nil {
		s.logger.Error("Failed to delete index files",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete index files: %w", err)
	}

	s.logger.Info("Successfully deleted index", zap.String("index_name", indexName))
	return nil
}

func (s *IndexingService) IndexExists(indexName string) (bool, error) {
	_, err := os.Stat(s.indexPath(indexName))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DeleteAllIndices removes every open index and any orphaned index
// directories left under basePath.
func (s *IndexingService) DeleteAllIndices() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errorsOccurred []error
	successCount := 0

	for indexName := range s.indexes {
		if err := s.deleteIndexLocked(indexName); err != nil {
			errorsOccurred = append(errorsOccurred, err)
			continue
		}
		successCount++
	}

	files, err := filepath.Glob(filepath.Join(s.basePath, "*.bleve"))
	if err != nil {
		return fmt.Errorf("failed to scan index directory: %w", err)
	}
	for _, file := range files {
		indexName := strings.TrimSuffix(filepath.Base(file), ".bleve")
		if err := os.RemoveAll(file); err != nil {
			errorsOccurred = append(errorsOccurred, err)
			continue
		}
		successCount++
		s.logger.Info("Deleted orphaned index files", zap.String("index_name", indexName))
	}

	if len(errorsOccurred) > 0 {
		return fmt.Errorf("%d errors occurred while deleting indices (%d succeeded)",
			len(errorsOccurred), successCount)
	}
	return nil
}

// Close closes every open index. The service can be reused afterwards.
func (s *IndexingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close index %s: %w", name, err)
		}
		delete(s.indexes, name)
	}
	return firstErr
}
