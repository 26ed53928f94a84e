// services/ingestion_service.go
package services

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"backend/utils"

	"github.com/google/uuid"
)

// header names accepted in any column order
const (
	colQty      = "qty"
	colUnit     = "unit"
	colIngr     = "ingr"
	colCarbs    = "carbs"
	colFats     = "fats"
	colProtein  = "protein"
	colNetCarbs = "net_carbs"
	colFiber    = "fiber"
	colKcal     = "kcal"
)

var requiredColumns = []string{colQty, colUnit, colIngr, colCarbs, colFats, colProtein, colNetCarbs, colFiber, colKcal}

const sessionTTL = 15 * time.Minute

// IngestionService parses pasted batch text into FoodEntry rows and parks
// parsed batches under short-lived handles so a preview/confirm flow does
// not have to round-trip the rows themselves.
type IngestionService struct {
	foods   *FoodService
	metrics *utils.Metrics

	mu       sync.Mutex
	sessions map[string]*batchSession
}

type batchSession struct {
	rows    []FoodEntry
	expires time.Time
}

func NewIngestionService(foods *FoodService, m *utils.Metrics) *IngestionService {
	return &IngestionService{foods: foods, metrics: m, sessions: make(map[string]*batchSession)}
}

// ParseResult carries the accepted rows plus how many input lines were
// dropped as malformed.
type ParseResult struct {
	Rows     []FoodEntry `json:"rows"`
	Rejected int         `json:"rejected"`
}

// ParseBatch reads comma-separated text with a header line. Columns are
// matched by name, not position. A line with a missing field, a non-numeric
// value or a blank name is dropped and counted, never aborts the batch.
func (s *IngestionService) ParseBatch(text string) (*ParseResult, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedRow)
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for _, record := range records[1:] {
		entry, ok := parseRow(record, index)
		if !ok {
			result.Rejected++
			s.countRow("rejected")
			continue
		}
		result.Rows = append(result.Rows, entry)
		s.countRow("accepted")
	}
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedRow, col)
		}
	}
	return index, nil
}

func parseRow(record []string, index map[string]int) (FoodEntry, bool) {
	field := func(col string) (string, bool) {
		i := index[col]
		if i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	number := func(col string) (float64, bool) {
		raw, ok := field(col)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	var entry FoodEntry
	var ok bool
	if entry.Ingredient, ok = field(colIngr); !ok || entry.Ingredient == "" {
		return entry, false
	}
	if entry.Unit, ok = field(colUnit); !ok || entry.Unit == "" {
		return entry, false
	}
	if entry.Qty, ok = number(colQty); !ok || entry.Qty <= 0 {
		return entry, false
	}
	if entry.Kcal, ok = number(colKcal); !ok {
		return entry, false
	}
	if entry.Carb, ok = number(colCarbs); !ok {
		return entry, false
	}
	if entry.Fat, ok = number(colFats); !ok {
		return entry, false
	}
	if entry.Protein, ok = number(colProtein); !ok {
		return entry, false
	}
	if entry.NetCarb, ok = number(colNetCarbs); !ok {
		return entry, false
	}
	if entry.Fiber, ok = number(colFiber); !ok {
		return entry, false
	}
	return entry, true
}

// SaveBatch persists parsed rows through the normalization pipeline with
// per-row isolation. servings scales every row down, defaulting to 1.
func (s *IngestionService) SaveBatch(rows []FoodEntry, servings float64) (*BatchResult, error) {
	if servings <= 0 {
		servings = 1
	}
	result := &BatchResult{}
	for _, entry := range rows {
		iqID, err := s.foods.SaveFood(entry, servings)
		if err != nil {
			result.Rejected++
			s.countRow("rejected")
			continue
		}
		result.QuantityIDs = append(result.QuantityIDs, iqID)
		result.Accepted++
	}
	if result.Accepted == 0 && len(rows) > 0 {
		return result, fmt.Errorf("%w: no row could be saved", ErrMalformedRow)
	}
	return result, nil
}

// Stash parks parsed rows and returns the handle a later Peek or Take must
// present. Handles expire after fifteen minutes.
func (s *IngestionService) Stash(rows []FoodEntry) string {
	handle := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.sessions[handle] = &batchSession{rows: rows, expires: time.Now().Add(sessionTTL)}
	return handle
}

// Peek returns the stashed rows without consuming the handle.
func (s *IngestionService) Peek(handle string) ([]FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	session, ok := s.sessions[handle]
	if !ok {
		return nil, fmt.Errorf("%w: batch session %s", ErrNotFound, handle)
	}
	return session.rows, nil
}

// Take returns the stashed rows and invalidates the handle.
func (s *IngestionService) Take(handle string) ([]FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	session, ok := s.sessions[handle]
	if !ok {
		return nil, fmt.Errorf("%w: batch session %s", ErrNotFound, handle)
	}
	delete(s.sessions, handle)
	return session.rows, nil
}

func (s *IngestionService) pruneLocked() {
	now := time.Now()
	for handle, session := range s.sessions {
		if now.After(session.expires) {
			delete(s.sessions, handle)
		}
	}
}

func (s *IngestionService) countRow(disposition string) {
	if s.metrics != nil {
		s.metrics.BatchRows.WithLabelValues(disposition).Inc()
	}
}
